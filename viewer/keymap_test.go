package viewer

import "testing"

func TestKeymapResolve(t *testing.T) {
	tests := []struct {
		key  Key
		want Action
	}{
		{Key{Name: "Escape"}, ActionHide},
		{Key{Name: "ArrowUp"}, ActionZoomIn},
		{Key{Name: "ArrowDown"}, ActionZoomOut},
		{Key{Name: "f", Ctrl: true}, ActionFocusSearch},
		{Key{Name: "F", Meta: true}, ActionFocusSearch},
		{Key{Name: "f"}, ActionNone},
		{Key{Name: "Escape", Ctrl: true}, ActionNone},
		{Key{Name: "Enter"}, ActionNone},
	}
	for _, tt := range tests {
		if got := DefaultKeymap.Resolve(tt.key); got != tt.want {
			t.Errorf("Resolve(%+v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	s := NewSession([]Size{{64, 64}}, Size{800, 600}, Options{MinHeight: 768})
	_ = s.Show(0)
	ratio := s.Geometry().Ratio

	if handled, err := Dispatch(s, ActionZoomIn, 0.1); !handled || err != nil {
		t.Fatalf("zoom in: handled=%v err=%v", handled, err)
	}
	if !approx(s.Geometry().Ratio, ratio*1.1) {
		t.Errorf("Ratio = %v, want %v", s.Geometry().Ratio, ratio*1.1)
	}
	if handled, _ := Dispatch(s, ActionFocusSearch, 0.1); handled {
		t.Error("focus-search is not a viewer action")
	}
	if handled, _ := Dispatch(s, ActionHide, 0.1); !handled || s.Visible() {
		t.Error("hide should close the viewer")
	}
}

func TestActionString(t *testing.T) {
	if ActionZoomOut.String() != "zoom-out" {
		t.Errorf("ActionZoomOut = %q", ActionZoomOut.String())
	}
}
