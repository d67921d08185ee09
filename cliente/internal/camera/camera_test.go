package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestNewAppliesConfigValues(t *testing.T) {
	c := New(70.0, 1.5, 8.0)

	if c.FOV != 70.0 {
		t.Errorf("FOV = %g, esperado 70", c.FOV)
	}
	if c.RotateSpeed != 1.5 {
		t.Errorf("RotateSpeed = %g, esperado 1.5", c.RotateSpeed)
	}
	if c.ZoomSpeed != 8.0 {
		t.Errorf("ZoomSpeed = %g, esperado 8", c.ZoomSpeed)
	}
	if c.RLCamera.Fovy != 70.0 {
		t.Errorf("Fovy inicial = %g, esperado o FOV configurado", c.RLCamera.Fovy)
	}
}

func TestNewFallbacksForNonPositive(t *testing.T) {
	c := New(0, -1, 0)

	if c.FOV <= 0 || c.RotateSpeed <= 0 || c.ZoomSpeed <= 0 {
		t.Errorf("padrões não aplicados: FOV=%g RotateSpeed=%g ZoomSpeed=%g",
			c.FOV, c.RotateSpeed, c.ZoomSpeed)
	}
}

func TestSetModeTogglesProjection(t *testing.T) {
	c := New(60.0, 2.0, 10.0)

	c.SetMode(ModeOrthographic)
	if c.RLCamera.Projection != rl.CameraOrthographic {
		t.Error("projeção deveria ser ortográfica")
	}

	c.SetMode(ModePerspective)
	if c.RLCamera.Projection != rl.CameraPerspective {
		t.Error("projeção deveria ser perspectiva")
	}
	if c.RLCamera.Fovy != 60.0 {
		t.Errorf("Fovy em perspectiva = %g, esperado o FOV configurado", c.RLCamera.Fovy)
	}
}

func TestFocusFramesRadius(t *testing.T) {
	c := New(60.0, 2.0, 10.0)
	center := rl.Vector3{X: 10, Y: 20, Z: 30}

	c.Focus(center, 40)

	if c.TargetLookAt != center || c.CurrentLookAt != center {
		t.Error("Focus não centralizou o alvo")
	}
	if c.TargetZoom != 100 { // raio * 2.5
		t.Errorf("TargetZoom = %g, esperado 100", c.TargetZoom)
	}
	if c.MaxZoom != 400 { // raio * 10
		t.Errorf("MaxZoom = %g, esperado 400", c.MaxZoom)
	}
}
