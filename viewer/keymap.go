package viewer

import "strings"

// Action is something a keyboard shortcut asks the gallery to do.
type Action int

const (
	ActionNone Action = iota
	ActionHide
	ActionZoomIn
	ActionZoomOut
	ActionFocusSearch
)

var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionHide:        "hide",
	ActionZoomIn:      "zoom-in",
	ActionZoomOut:     "zoom-out",
	ActionFocusSearch: "focus-search",
}

func (a Action) String() string {
	return actionNames[a]
}

// Key is a keyboard event using DOM key names ("Escape", "ArrowUp", "f").
type Key struct {
	Name string
	Ctrl bool
	Meta bool
}

// Binding ties a key to an action.
type Binding struct {
	Key    Key
	Action Action
}

// Keymap resolves key events to actions.
type Keymap []Binding

// DefaultKeymap is Escape to hide, arrows to zoom and Ctrl/Cmd+F to search.
var DefaultKeymap = Keymap{
	{Key{Name: "Escape"}, ActionHide},
	{Key{Name: "ArrowUp"}, ActionZoomIn},
	{Key{Name: "ArrowDown"}, ActionZoomOut},
	{Key{Name: "f", Ctrl: true}, ActionFocusSearch},
	{Key{Name: "f", Meta: true}, ActionFocusSearch},
}

// Resolve returns the action bound to k. Letter keys compare case
// insensitively so Shift does not defeat a binding.
func (m Keymap) Resolve(k Key) Action {
	for _, b := range m {
		if b.Key.Ctrl != k.Ctrl || b.Key.Meta != k.Meta {
			continue
		}
		if strings.EqualFold(b.Key.Name, k.Name) {
			return b.Action
		}
	}
	return ActionNone
}

// Dispatch applies a viewer action to v. Actions that do not concern the
// viewer are ignored and reported as not handled.
func Dispatch(v Viewer, a Action, zoomRatio float64) (handled bool, err error) {
	switch a {
	case ActionHide:
		v.Hide()
		return true, nil
	case ActionZoomIn:
		return true, v.Zoom(zoomRatio)
	case ActionZoomOut:
		return true, v.Zoom(-zoomRatio)
	}
	return false, nil
}
