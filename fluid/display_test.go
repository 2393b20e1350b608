package fluid

import "testing"

func TestDisplayEmptyDyeIsTransparent(t *testing.T) {
	dye, _ := NewField(8, 4, DyeChannels)
	img := NewDisplay(0.5).Render(dye)

	if img.Rect.Dx() != 8 || img.Rect.Dy() != 4 {
		t.Fatalf("image is %v, want 8x4", img.Rect)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("pixel %d alpha = %d, want 0", i/4, img.Pix[i])
		}
	}
}

func TestDisplayAlphaFollowsBrightness(t *testing.T) {
	dye, _ := NewField(2, 1, DyeChannels)
	dye.Set(0, 0, 0, 0.5) // |rgb| = 0.5
	dye.Set(1, 0, 0, 2)   // Oversaturated
	dye.Set(1, 0, 1, 2)
	dye.Set(1, 0, 2, 2)

	img := NewDisplay(1).Render(dye)

	if r, a := img.Pix[0], img.Pix[3]; r != 128 || a != 128 {
		t.Errorf("half-bright pixel r=%d a=%d, want 128 128", r, a)
	}
	for c := 4; c < 8; c++ {
		if img.Pix[c] != 255 {
			t.Errorf("saturated pixel channel %d = %d, want 255", c-4, img.Pix[c])
		}
	}
}

func TestDisplayNegativeDyeClampsToZero(t *testing.T) {
	dye, _ := NewField(1, 1, DyeChannels)
	dye.Fill(-1, 0.25, 0)

	img := NewDisplay(0.5).Render(dye)
	if img.Pix[0] != 0 {
		t.Errorf("negative red rendered as %d", img.Pix[0])
	}
	if img.Pix[1] != 64 {
		t.Errorf("green = %d, want 64", img.Pix[1])
	}
}

func TestDisplayFlipsRows(t *testing.T) {
	dye, _ := NewField(3, 4, DyeChannels)
	dye.Set(0, 0, 0, 1) // Bottom-left of the domain

	img := NewDisplay(1).Render(dye)

	bottomLeft := img.PixOffset(0, 3)
	if img.Pix[bottomLeft] != 255 {
		t.Errorf("expected bottom-left image pixel lit, got r=%d", img.Pix[bottomLeft])
	}
	if topLeft := img.PixOffset(0, 0); img.Pix[topLeft] != 0 {
		t.Errorf("expected top-left image pixel dark, got r=%d", img.Pix[topLeft])
	}
}

func TestDisplayPremultiplied(t *testing.T) {
	dye, _ := NewField(1, 1, DyeChannels)
	dye.Fill(1, 0, 0)

	img := NewDisplay(0.5).RenderPremultiplied(dye)

	// alpha = to8(0.5) = 128, red premultiplied = 255*128/255
	if r, a := img.Pix[0], img.Pix[3]; r != 128 || a != 128 {
		t.Errorf("premultiplied r=%d a=%d, want 128 128", r, a)
	}
}

func TestDisplayPixelsMatchRender(t *testing.T) {
	dye, _ := NewField(4, 2, DyeChannels)
	dye.Set(1, 1, 2, 0.75)

	d := NewDisplay(0.5)
	px := d.Pixels(dye)
	img := d.Render(dye)

	if len(px) != 8 {
		t.Fatalf("got %d pixels, want 8", len(px))
	}
	for i, c := range px {
		o := i * 4
		if c.R != img.Pix[o] || c.G != img.Pix[o+1] || c.B != img.Pix[o+2] || c.A != img.Pix[o+3] {
			t.Fatalf("pixel %d = %v, image has %v", i, c, img.Pix[o:o+4])
		}
	}
}

func TestDisplayReallocatesOnResize(t *testing.T) {
	d := NewDisplay(0.5)
	small, _ := NewField(2, 2, DyeChannels)
	large, _ := NewField(6, 3, DyeChannels)

	d.Render(small)
	img := d.Render(large)
	if img.Rect.Dx() != 6 || img.Rect.Dy() != 3 {
		t.Errorf("image is %v after resize, want 6x3", img.Rect)
	}
}
