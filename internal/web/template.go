package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/binw2-sim/internal/status"
	"github.com/sweeney/binw2-sim/internal/topology"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hex": func(b byte) string {
		return fmt.Sprintf("0x%02X", b)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>binw2 simulator</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.board { position: relative; background: #111; width: {{.Width}}px; height: {{.Height}}px; }
.led { position: absolute; width: {{.Size}}px; height: {{.Size}}px; background: #222; color: #555; font-size: 10px; text-align: center; line-height: {{.Size}}px; }
.led.lit.charlieplexed { background: #3050ff; color: #fff; }
.led.lit.indicator { background: #e020e0; color: #fff; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>binw2 simulator</h1>

<div class="board">
{{range .LEDs}}<div id="led-{{.ID}}" class="led {{.Kind}}{{if .Lit}} lit{{end}}" style="left: {{.X}}px; top: {{.Y}}px">{{.ID}}</div>
{{end}}</div>
<form method="post" action="/button"><button id="press" type="submit">press button</button></form>

<h2>Display</h2>
<table>
<tr><th>Time</th><td id="time">{{if .DisplayTime}}{{.DisplayTime}}{{else}}-{{end}}</td></tr>
<tr><th>Frame</th><td id="frame">{{.Frame.Seq}}</td></tr>
<tr><th>State</th><td>{{hex .Registers.State}}</td></tr>
<tr><th>PIN / DDR</th><td>{{hex .Registers.Pin}} / {{hex .Registers.Dir}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Changes</th><td>{{.Changes}}</td></tr>
<tr><th>State changes</th><td>{{.Stats.StateChanges}}</td></tr>
<tr><th>Arms</th><td>{{.Stats.Arms}}</td></tr>
<tr><th>Redraws</th><td>{{.Redraws}}</td></tr>
<tr><th>Button requests</th><td>{{.ButtonRequests}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>MCU</th><td>{{.Config.MCU}} @ {{.Config.FrequencyHz}} Hz</td></tr>
<tr><th>UI</th><td>{{.Config.UI}}</td></tr>
<tr><th>POV hold</th><td>{{.Config.HoldTicks}} frames</td></tr>
<tr><th>Poll / redraw</th><td>{{.Config.PollMs}}ms / {{.Config.RedrawMs}}ms</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var leds = document.querySelectorAll(".led");
  setInterval(function() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(j) {
      var lit = {};
      (j.status.display.lit || []).forEach(function(id) { lit[id] = true; });
      leds.forEach(function(el) {
        el.classList.toggle("lit", !!lit[el.textContent]);
      });
      document.getElementById("time").textContent = j.status.display.time || "-";
      document.getElementById("frame").textContent = j.status.display.frame;
    }).catch(function() {});
  }, 250);
})();
</script>
</body>
</html>
`

type ledView struct {
	ID   topology.LED
	Kind string
	X, Y int
	Lit  bool
}

func renderHTML(w io.Writer, snap status.Snapshot, table *topology.Table) {
	lit := make(map[topology.LED]bool, len(snap.Frame.Lit))
	for _, l := range snap.Frame.Lit {
		lit[l] = true
	}

	// Board Y grows upwards, CSS top grows downwards.
	var leds []ledView
	var width, height float32
	if table != nil {
		width, height = table.Size()
		for _, e := range table.Entries() {
			q := e.Quad()
			leds = append(leds, ledView{
				ID:   e.LED,
				Kind: e.Kind.String(),
				X:    int(q[2].X),
				Y:    int(height - q[0].Y),
				Lit:  lit[e.LED],
			})
		}
	}

	ledSize := float64(topology.LEDSize)

	// Snapshot has Uptime() and DisplayTime() methods; the template needs fields.
	data := struct {
		status.Snapshot
		Uptime        time.Duration
		DisplayTime   string
		LEDs          []ledView
		Width, Height int
		Size          int
	}{
		Snapshot:    snap,
		Uptime:      snap.Uptime(),
		DisplayTime: snap.DisplayTime(),
		LEDs:        leds,
		Width:       int(width),
		Height:      int(height),
		Size:        int(ledSize),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
