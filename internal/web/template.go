package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="2">
<title>heartbeat-watchdog</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; }
.state { font-size: 3em; font-weight: bold; }
.ok { color: #2a2; }
.fault { color: #c22; }
table { border-collapse: collapse; }
td, th { padding: 0.2em 0.8em; text-align: left; }
</style>
</head>
<body>
<h1>heartbeat-watchdog</h1>
<p class="state {{if eq .State.String "OK"}}ok{{else}}fault{{end}}">{{.State}}</p>
<table>
<tr><th>Last fault</th><td>{{.LastFault}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}} ms</td></tr>
<tr><th>Range</th><td>{{.Config.RangeKind}} {{.Config.RangeMs}} ms</td></tr>
<tr><th>Warmup</th><td>{{.Config.WarmupMs}} ms</td></tr>
<tr><th>Min beats</th><td>{{.Config.MinBeats}}</td></tr>
<tr><th>OK transitions</th><td>{{.Counts.Ok}}</td></tr>
<tr><th>Timeout faults</th><td>{{.Counts.Timeout}}</td></tr>
<tr><th>Window faults</th><td>{{.Counts.Window}}</td></tr>
<tr><th>Out-of-order faults</th><td>{{.Counts.OutOfOrder}}</td></tr>
<tr><th>MQTT</th><td>{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
</table>
<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render template: %v", err)
	}
}
