package imageproc

import (
	"image"
	"testing"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/stretchr/testify/require"
)

func TestComputePosition(t *testing.T) {
	tests := []struct {
		name   string
		cw, ch int
		ow, oh int
		spec   model.AlignmentSpec
		want   image.Point
	}{
		{
			name: "middle/middle",
			cw:   800, ch: 600, ow: 100, oh: 50,
			spec: model.AlignmentSpec{XAlign: model.XMiddle, YAlign: model.YMiddle},
			want: image.Pt(350, 275),
		},
		{
			name: "right/bottom with offsets",
			cw:   800, ch: 600, ow: 100, oh: 50,
			spec: model.AlignmentSpec{XAlign: model.XRight, YAlign: model.YBottom, XOffset: 10, YOffset: 5},
			want: image.Pt(690, 545),
		},
		{
			name: "left/top takes offsets as is",
			cw:   800, ch: 600, ow: 100, oh: 50,
			spec: model.AlignmentSpec{XAlign: model.XLeft, YAlign: model.YTop, XOffset: 7, YOffset: 3},
			want: image.Pt(7, 3),
		},
		{
			name: "odd sizes halve each term separately",
			cw:   801, ch: 601, ow: 101, oh: 51,
			spec: model.AlignmentSpec{XAlign: model.XMiddle, YAlign: model.YMiddle},
			want: image.Pt(400-50, 300-25),
		},
		{
			name: "odd overlay on even canvas rounds the half toward zero",
			cw:   800, ch: 600, ow: 101, oh: 50,
			spec: model.AlignmentSpec{XAlign: model.XMiddle, YAlign: model.YMiddle},
			want: image.Pt(350, 275), // не 349: половины берутся целочисленно по отдельности
		},
		{
			name: "overlay bigger than canvas goes negative",
			cw:   100, ch: 100, ow: 300, oh: 200,
			spec: model.AlignmentSpec{XAlign: model.XRight, YAlign: model.YBottom},
			want: image.Pt(-200, -100),
		},
		{
			name: "unknown alignment leaves zero",
			cw:   800, ch: 600, ow: 100, oh: 50,
			spec: model.AlignmentSpec{XAlign: "diagonal", YAlign: model.YBottom, XOffset: 10},
			want: image.Pt(0, 550),
		},
		{
			name: "zero-size overlay",
			cw:   800, ch: 600,
			spec: model.AlignmentSpec{XAlign: model.XRight, YAlign: model.YBottom},
			want: image.Pt(800, 600),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePosition(tt.cw, tt.ch, tt.ow, tt.oh, tt.spec)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestComputePosition_AllAlignments(t *testing.T) {
	xs := []model.XAlign{model.XLeft, model.XMiddle, model.XRight}
	ys := []model.YAlign{model.YTop, model.YMiddle, model.YBottom}

	// холст 800x600, ватермарк 100x50, отступы (10,5)
	want := map[model.XAlign]map[model.YAlign]image.Point{
		model.XLeft:   {model.YTop: image.Pt(10, 5), model.YMiddle: image.Pt(10, 280), model.YBottom: image.Pt(10, 545)},
		model.XMiddle: {model.YTop: image.Pt(360, 5), model.YMiddle: image.Pt(360, 280), model.YBottom: image.Pt(360, 545)},
		model.XRight:  {model.YTop: image.Pt(690, 5), model.YMiddle: image.Pt(690, 280), model.YBottom: image.Pt(690, 545)},
	}

	for _, x := range xs {
		for _, y := range ys {
			t.Run(string(x)+"/"+string(y), func(t *testing.T) {
				spec := model.AlignmentSpec{XAlign: x, YAlign: y, XOffset: 10, YOffset: 5}
				require.Equal(t, want[x][y], ComputePosition(800, 600, 100, 50, spec))
			})
		}
	}
}
