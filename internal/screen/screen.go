// Package screen renders the station UI to the SSD1306 OLED: the readout
// and gauge on the main screen, and one view per menu state.
package screen

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/pvollmer/irgauge/pkg/menu"
	"github.com/pvollmer/irgauge/pkg/mlx90614"
	"github.com/pvollmer/irgauge/pkg/settings"
)

const (
	width  = 128
	height = 64

	// display span of the gauge bar, degrees celsius
	gaugeMinC = 30.0
	gaugeMaxC = 45.0
)

// Frame is everything one refresh draws
type Frame struct {
	TempC   float64
	Valid   bool
	Status  mlx90614.Status
	Battery int // percent, -1 when unknown

	State     menu.State
	Index     int
	Countdown int
	Rec       settings.Record
}

// OLED renders frames to an SSD1306 over I2C
type OLED struct {
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

// New opens the display with the default 128x64 geometry
func New(bus i2c.Bus) (*OLED, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, err
	}
	return &OLED{
		dev: dev,
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, width, height)),
	}, nil
}

// SetBrightness maps a brightness percent onto the panel contrast
func (o *OLED) SetBrightness(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return o.dev.SetContrast(byte(percent * 255 / 100))
}

// Render draws the frame and pushes it to the panel
func (o *OLED) Render(f Frame) error {
	draw.Draw(o.img, o.img.Bounds(), &image.Uniform{image1bit.Off}, image.Point{}, draw.Src)

	switch f.State {
	case menu.Main:
		o.drawMain(f)
	case menu.TopMenu:
		o.drawTopMenu(f)
	case menu.Brightness:
		o.drawLine(0, "BRIGHTNESS")
		o.drawLine(2, fmt.Sprintf("%d%%", f.Rec.Brightness()))
		o.drawBar(48, f.Rec.Brightness(), 100)
	case menu.Sound:
		o.drawLine(0, "SOUND")
		if f.Rec.SoundOn {
			o.drawLine(2, fmt.Sprintf("ON  %d%%", f.Rec.Volume))
		} else {
			o.drawLine(2, "OFF")
		}
	case menu.Emissivity:
		o.drawLine(0, "EMISSIVITY")
		o.drawLine(2, fmt.Sprintf("%.2f", f.Rec.Emissivity))
	case menu.RestartConfirm:
		o.drawLine(0, "RESTART NOW?")
		o.drawChoice(2, "RESTART", f.Index == 0)
		o.drawChoice(3, "CANCEL", f.Index == 1)
	case menu.RestartCountdown:
		o.drawLine(0, "RESTARTING")
		o.drawLine(2, fmt.Sprintf("IN %d", f.Countdown))
	}

	return o.dev.Draw(o.img.Bounds(), o.img, image.Point{})
}

// Halt blanks the panel
func (o *OLED) Halt() error {
	return o.dev.Halt()
}

func (o *OLED) drawMain(f Frame) {
	if f.Valid {
		t := f.Rec.Unit.Convert(f.TempC)
		o.drawLine(1, fmt.Sprintf("%5.1f %s", t, f.Rec.Unit.Suffix()))
		o.drawLine(2, f.Status.Label())
	} else {
		o.drawLine(1, " --.-")
	}
	if f.Battery >= 0 {
		o.drawString(width-4*7, 13, fmt.Sprintf("%3d%%", f.Battery))
	}
	if f.Rec.GaugeVisible && f.Valid {
		span := gaugeMaxC - gaugeMinC
		o.drawBar(56, int((f.TempC-gaugeMinC)/span*100), 100)
	}
}

func (o *OLED) drawTopMenu(f Frame) {
	// 13px rows fit four items; scroll so the cursor stays visible
	top := 0
	if f.Index > 3 {
		top = f.Index - 3
	}
	for row := 0; row < 4 && top+row < len(menu.ItemLabels); row++ {
		o.drawChoice(row, menu.ItemLabels[top+row], top+row == f.Index)
	}
}

func (o *OLED) drawChoice(row int, label string, selected bool) {
	if selected {
		o.drawLine(row, "> "+label)
	} else {
		o.drawLine(row, "  "+label)
	}
}

func (o *OLED) drawLine(row int, s string) {
	o.drawString(2, 13+row*14, s)
}

func (o *OLED) drawString(x, y int, s string) {
	d := font.Drawer{
		Dst:  o.img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawBar fills a horizontal gauge at y, clamped to the panel
func (o *OLED) drawBar(y, value, max int) {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	fill := (width - 4) * value / max
	for x := 0; x < width; x++ {
		o.img.SetBit(x, y, image1bit.On)
		o.img.SetBit(x, y+7, image1bit.On)
	}
	for dy := 1; dy < 7; dy++ {
		o.img.SetBit(0, y+dy, image1bit.On)
		o.img.SetBit(width-1, y+dy, image1bit.On)
		for x := 2; x < 2+fill; x++ {
			o.img.SetBit(x, y+dy, image1bit.On)
		}
	}
}
