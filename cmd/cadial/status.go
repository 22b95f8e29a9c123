package main

import (
	"bytes"
	"html/template"
	"io"
	"net/http"

	"github.com/caproto-go/caproto/internal/ca/circuit"
)

const dialStatusTmplContents = `
<!DOCTYPE html>
<title>cadial</title>
<body>
<h1>Circuit</h1>
<table>
<tr><td>peer</td><td>{{ .Circuit.PeerAddress }}</td></tr>
<tr><td>state</td><td>{{ .Circuit.State }}</td></tr>
<tr><td>version</td><td>{{ .Circuit.Version }}</td></tr>
<tr><td>last activity</td><td>{{ .Circuit.LastActivity }}</td></tr>
</table>
<h1>Channel</h1>
<table>
<tr><td>name</td><td>{{ .Channel.Name }}</td></tr>
<tr><td>cid</td><td>{{ .Channel.CID }}</td></tr>
<tr><td>state</td><td>{{ .Channel.State }}</td></tr>
<tr><td>native type</td><td>{{ .Channel.NativeDataType }}</td></tr>
</table>
`

var dialStatusTmpl = template.Must(template.New("status").Parse(dialStatusTmplContents))

func handleDialStatus(w http.ResponseWriter, r *http.Request, vc *circuit.VirtualCircuit, ch *circuit.Channel) {
	var buf bytes.Buffer
	if err := dialStatusTmpl.Execute(&buf, struct {
		Circuit *circuit.VirtualCircuit
		Channel *circuit.Channel
	}{
		Circuit: vc,
		Channel: ch,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	io.Copy(w, &buf)
}
