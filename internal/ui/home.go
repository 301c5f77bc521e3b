package ui

import (
	"fmt"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/sensors"
	"github.com/meshcore-dev/companion-ui/internal/telemetry"
)

// HomePage is one page of the Home carousel.
type HomePage uint8

const (
	PageFirst HomePage = iota
	PageRecent
	PageRadio
	PageBluetooth
	PageAdvert
	PageSensors
	PageShutdown
)

func (p HomePage) String() string {
	switch p {
	case PageFirst:
		return "first"
	case PageRecent:
		return "recent"
	case PageRadio:
		return "radio"
	case PageBluetooth:
		return "bluetooth"
	case PageAdvert:
		return "advert"
	case PageSensors:
		return "sensors"
	case PageShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

const (
	battMinMilliVolts = 3000
	battMaxMilliVolts = 4200

	sensorsBufferSize    = 200
	sensorsRefreshMS     = 5000
	sensorsRefreshSlowMS = 60000
)

type homeScreen struct {
	h       host
	backend mesh.Backend
	rtc     RTC
	board   Board
	prefs   *prefs.NodePrefs
	sensors sensors.Manager

	pages        []HomePage
	page         int
	shutdownInit bool
	recentSize   int

	lpp                *telemetry.Buffer
	sensorsNB          int
	sensorsScroll      bool
	sensorsOffset      int
	nextSensorsRefresh int64
	sensorsRefreshMS   int64
}

func newHome(h host, deps Deps, opts Options) *homeScreen {
	pages := []HomePage{PageFirst, PageRecent, PageRadio, PageBluetooth, PageAdvert}
	if opts.SensorsPage {
		pages = append(pages, PageSensors)
	}
	pages = append(pages, PageShutdown)

	refresh := int64(sensorsRefreshMS)
	if opts.AutoOffMS == 0 {
		refresh = sensorsRefreshSlowMS
	}
	return &homeScreen{
		h:                h,
		backend:          deps.Backend,
		rtc:              deps.RTC,
		board:            deps.Board,
		prefs:            deps.Prefs,
		sensors:          deps.Sensors,
		pages:            pages,
		recentSize:       opts.RecentListSize,
		lpp:              telemetry.NewBuffer(sensorsBufferSize),
		sensorsRefreshMS: refresh,
	}
}

func (s *homeScreen) isScreen() {}

// Page is the page currently shown.
func (s *homeScreen) Page() HomePage { return s.pages[s.page] }

func (s *homeScreen) Poll(int64) {
	// the press that armed shutdown must be released first
	if s.shutdownInit && !s.h.buttonPressed() {
		s.shutdownInit = false
		s.h.shutdown(false)
	}
}

func (s *homeScreen) HandleInput(k keys.Key) bool {
	page := s.Page()
	switch k.Kind {
	case keys.Left, keys.Prev:
		s.page = (s.page + len(s.pages) - 1) % len(s.pages)
		s.enteredPage()
		return true
	case keys.Right, keys.Next:
		s.page = (s.page + 1) % len(s.pages)
		s.enteredPage()
		return true
	case keys.Enter:
		switch page {
		case PageFirst:
			s.h.gotoScreen(ScreenCompose)
		case PageBluetooth:
			s.backend.SetSerialEnabled(!s.backend.SerialEnabled())
		case PageAdvert:
			s.h.notify(feedback.EventAck)
			if s.backend.Advert() {
				s.h.showAlert("Advert sent!", alertLongMS)
			} else {
				s.h.showAlert("Advert failed..", alertLongMS)
			}
		case PageSensors:
			s.h.toggleGPS()
			s.nextSensorsRefresh = 0
		case PageShutdown:
			s.shutdownInit = true
		default:
			return false
		}
		return true
	}
	return false
}

func (s *homeScreen) enteredPage() {
	if s.Page() == PageRecent {
		s.h.showAlert("Recent adverts", alertMS)
	}
}

func (s *homeScreen) nodeName() string {
	if s.prefs != nil {
		return s.prefs.NodeName
	}
	return s.backend.NodeName()
}

func (s *homeScreen) Render(d display.Driver, now int64) int {
	d.SetTextSize(1)
	d.SetColor(display.Green)
	d.SetCursor(0, 0)
	d.Print(d.TranslateUTF8ToBlocks(clip(s.nodeName(), mesh.MaxNameLen-1)))

	drawBattery(d, s.h.battMilliVolts())

	y, x := 14, d.Width()/2-25
	for i := range s.pages {
		if i == s.page {
			d.FillRect(x-1, y-1, 3, 3)
		} else {
			d.DrawRect(x, y, 1, 1)
		}
		x += 10
	}

	switch s.Page() {
	case PageFirst:
		s.renderFirst(d)
	case PageRecent:
		s.renderRecent(d)
	case PageRadio:
		s.renderRadio(d)
	case PageBluetooth:
		icon := iconBluetoothOff
		if s.backend.SerialEnabled() {
			icon = iconBluetoothOn
		}
		s.renderAction(d, icon, "toggle")
	case PageAdvert:
		s.renderAction(d, iconAdvert, "advert")
	case PageSensors:
		s.renderSensors(d, now)
	case PageShutdown:
		if s.shutdownInit {
			d.SetColor(display.Green)
			d.DrawTextCentered(d.Width()/2, 34, "hibernating...")
		} else {
			s.renderAction(d, iconPower, "hibernate")
		}
	}
	return 5000
}

// drawBattery draws a charge gauge in the top-right corner.
func drawBattery(d display.Driver, mv uint16) {
	pct := (int(mv) - battMinMilliVolts) * 100 / (battMaxMilliVolts - battMinMilliVolts)
	pct = min(max(pct, 0), 100)

	const w, h = 24, 10
	x := d.Width() - w - 5
	d.SetColor(display.Green)
	d.DrawRect(x, 0, w, h)
	d.FillRect(x+w, h/4, 3, h/2)
	d.FillRect(x+2, 2, pct*(w-4)/100, h-4)
}

func (s *homeScreen) renderFirst(d display.Driver) {
	d.SetColor(display.Yellow)
	d.SetTextSize(2)
	d.DrawTextCentered(d.Width()/2, 20, fmt.Sprintf("MSG: %d", s.h.msgCount()))

	switch {
	case s.backend.HasConnection():
		d.SetColor(display.Green)
		d.SetTextSize(1)
		d.DrawTextCentered(d.Width()/2, 43, "< Connected >")
	case s.backend.BLEPin() != 0:
		d.SetColor(display.Red)
		d.SetTextSize(2)
		d.DrawTextCentered(d.Width()/2, 43, fmt.Sprintf("Pin:%d", s.backend.BLEPin()))
	}
	d.SetTextSize(1)
}

func (s *homeScreen) renderRecent(d display.Driver) {
	d.SetColor(display.Green)
	now := s.rtc.CurrentTime()
	y := 20
	for _, a := range s.backend.GetRecentlyHeard(s.recentSize) {
		if a.Name == "" {
			continue
		}
		ts := age(now, a.RecvTimestamp)
		tw := d.TextWidth(ts)
		d.DrawTextEllipsized(0, y, d.Width()-tw-1, d.TranslateUTF8ToBlocks(a.Name))
		d.SetCursor(d.Width()-tw-1, y)
		d.Print(ts)
		y += 11
	}
}

func (s *homeScreen) renderRadio(d display.Driver) {
	d.SetColor(display.Yellow)
	d.SetTextSize(1)
	var p prefs.NodePrefs
	if s.prefs != nil {
		p = *s.prefs
	}
	noise := 0
	if s.board != nil {
		noise = s.board.NoiseFloor()
	}
	lines := []string{
		fmt.Sprintf("FQ: %06.3f   SF: %d", p.Freq, p.SF),
		fmt.Sprintf("BW: %03.2f     CR: %d", p.BW, p.CR),
		fmt.Sprintf("TX: %ddBm", p.TxPowerDBm),
		fmt.Sprintf("Noise floor: %d", noise),
	}
	for i, l := range lines {
		d.SetCursor(0, 20+11*i)
		d.Print(l)
	}
}

func (s *homeScreen) renderAction(d display.Driver, icon display.Bitmap, verb string) {
	d.SetColor(display.Green)
	d.SetTextSize(1)
	d.DrawBitmap((d.Width()-icon.Width)/2, 18, icon)
	d.DrawTextCentered(d.Width()/2, d.Height()-11, verb+": "+pressLabel)
}

// refreshSensors re-reads telemetry once the refresh deadline has passed.
func (s *homeScreen) refreshSensors(now int64) {
	if s.sensorsNB > 0 && now < s.nextSensorsRefresh {
		return
	}
	s.lpp.Reset()
	s.lpp.AddVoltage(telemetry.ChannelSelf, float64(s.h.battMilliVolts())/1000)
	if s.sensors != nil {
		s.sensors.QuerySensors(sensors.PermissionsAll, s.lpp)
	}

	s.sensorsNB = 0
	r := telemetry.NewReader(s.lpp.Bytes())
	for {
		_, t, ok := r.ReadHeader()
		if !ok {
			break
		}
		r.SkipData(t)
		s.sensorsNB++
	}
	s.sensorsScroll = s.sensorsNB > s.recentSize
	if s.sensorsOffset >= s.sensorsNB {
		s.sensorsOffset = 0
	}
	s.nextSensorsRefresh = now + s.sensorsRefreshMS
}

func (s *homeScreen) renderSensors(d display.Driver, now int64) {
	s.refreshSensors(now)
	if s.sensorsNB == 0 {
		return
	}

	r := telemetry.NewReader(s.lpp.Bytes())
	for range s.sensorsOffset {
		_, t, _ := r.ReadHeader()
		r.SkipData(t)
	}

	rows := s.sensorsNB
	if s.sensorsScroll {
		rows = s.recentSize
	}
	d.SetColor(display.Green)
	d.SetTextSize(1)
	y := 18
	for range rows {
		_, t, ok := r.ReadHeader()
		if !ok {
			r.Reset()
			_, t, _ = r.ReadHeader()
		}
		name, value := sensorLine(r, t)
		d.SetCursor(0, y)
		d.Print(name)
		d.SetCursor(d.Width()-d.TextWidth(value)-1, y)
		d.Print(value)
		y += 12
	}

	if s.sensorsScroll {
		s.sensorsOffset = (s.sensorsOffset + 1) % s.sensorsNB
	} else {
		s.sensorsOffset = 0
	}
}

// sensorLine reads one record payload and formats it. Types without a known
// rendering are skipped and labelled "unk".
func sensorLine(r *telemetry.Reader, t telemetry.Type) (string, string) {
	var format string
	switch t {
	case telemetry.TypeGPS:
		lat, lon, _, _ := r.ReadGPS()
		return "gps", fmt.Sprintf("%.4f %.4f", lat, lon)
	case telemetry.TypeVoltage, telemetry.TypePower:
		format = "%6.2f"
	case telemetry.TypeCurrent:
		format = "%.3f"
	case telemetry.TypeTemperature, telemetry.TypeRelativeHumidity, telemetry.TypeBarometricPressure:
		format = "%.2f"
	case telemetry.TypeAltitude:
		format = "%.0f"
	default:
		r.SkipData(t)
		return "unk", ""
	}
	v, _ := r.ReadValue(t)
	return sensorName(t), fmt.Sprintf(format, v)
}

func sensorName(t telemetry.Type) string {
	switch t {
	case telemetry.TypeRelativeHumidity:
		return "humidity"
	case telemetry.TypeBarometricPressure:
		return "pressure"
	default:
		return t.Name()
	}
}
