package main

import (
	"bytes"
	"html/template"
	"io"
	"net/http"

	"github.com/caproto-go/caproto/internal/ca/circuit"
)

const serverStatusTmplContents = `
<!DOCTYPE html>
<title>caserver</title>
<body>
<h1>PVs</h1>
<ul>
{{ range .PVNames }}<li>{{ . }}</li>
{{ end }}
</ul>
<h1>Circuits</h1>
<table width="100%">
<tr><th>peer</th><th>state</th><th>version</th><th>last activity</th></tr>
{{ range .Circuits }}
<tr>
<td>{{ .PeerAddress }}</td>
<td>{{ .State }}</td>
<td>{{ .Version }}</td>
<td>{{ .LastActivity }}</td>
</tr>
{{ end }}
</table>
`

var serverStatusTmpl = template.Must(template.New("status").Parse(serverStatusTmplContents))

func handleServerStatus(w http.ResponseWriter, r *http.Request, reg *registry, tracker *circuitTracker) {
	var buf bytes.Buffer
	if err := serverStatusTmpl.Execute(&buf, struct {
		PVNames  []string
		Circuits []*circuit.VirtualCircuit
	}{
		PVNames:  reg.names(),
		Circuits: tracker.list(),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	io.Copy(w, &buf)
}
