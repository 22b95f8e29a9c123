// Command caserver is a demonstration SERVER-role Channel Access host:
// it accepts TCP connections, drives one VirtualCircuit per connection
// against a small in-memory PV registry, and exists to exercise
// internal/ca/circuit's SERVER role end to end over a real socket. It is
// not a production CA server (no process database, no search/beacon).
package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/circuit"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
	"github.com/caproto-go/caproto/internal/caerr"
	"github.com/caproto-go/caproto/internal/transport"
)

var (
	listenAddr = flag.String("listen", ":5064",
		"host:port to accept Channel Access circuits on")
	httpAddr = flag.String("http", ":8080",
		"host:port to serve /metrics and the status page on")
	keepAlive = flag.Duration("keepalive", 15*time.Second,
		"TCP keepalive period for accepted circuits")
)

var (
	circuitsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caserver",
		Name:      "CircuitsAccepted",
		Help:      "total circuits accepted",
	})
	circuitsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "caserver",
		Name:      "CircuitsActive",
		Help:      "circuits currently connected",
	})
	commandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caserver",
		Name:      "CommandsHandled",
		Help:      "commands decoded off accepted circuits, by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(circuitsAccepted)
	prometheus.MustRegister(circuitsActive)
	prometheus.MustRegister(commandsHandled)
}

func main() {
	flag.Parse()

	reg := newRegistry()
	reg.add("example:pv", dbr.Double, 1, dbr.Value{Data: []float64{3.14}})
	reg.add("example:counter", dbr.Long, 1, dbr.Value{Data: []int32{0}})

	raddr, err := net.ResolveTCPAddr("tcp", *listenAddr)
	if err != nil {
		log.Fatal(err)
	}
	ln, err := net.ListenTCP("tcp", raddr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("listening on %s", *listenAddr)

	tracker := newCircuitTracker()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { handleServerStatus(w, r, reg, tracker) })
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(*httpAddr, nil)

	for {
		conn, err := ln.AcceptTCP()
		if err != nil {
			log.Fatal(err)
		}
		if err := transport.Tune(conn, *keepAlive); err != nil {
			log.Printf("tuning connection from %s: %v", conn.RemoteAddr(), err)
		}
		circuitsAccepted.Inc()
		circuitsActive.Inc()
		go func() {
			defer circuitsActive.Dec()
			handleConn(conn, reg, tracker)
		}()
	}
}

// circuitTracker is read by the status page to list live circuits; it is
// not needed by the protocol engine itself.
type circuitTracker struct {
	mu       sync.Mutex
	circuits map[*circuit.VirtualCircuit]struct{}
}

func newCircuitTracker() *circuitTracker {
	return &circuitTracker{circuits: make(map[*circuit.VirtualCircuit]struct{})}
}

func (t *circuitTracker) add(vc *circuit.VirtualCircuit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.circuits[vc] = struct{}{}
}

func (t *circuitTracker) remove(vc *circuit.VirtualCircuit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.circuits, vc)
}

func (t *circuitTracker) list() []*circuit.VirtualCircuit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*circuit.VirtualCircuit, 0, len(t.circuits))
	for vc := range t.circuits {
		out = append(out, vc)
	}
	return out
}

func handleConn(conn *net.TCPConn, reg *registry, tracker *circuitTracker) {
	defer conn.Close()

	vc := circuit.New(caerr.Server, conn.RemoteAddr().String(), 0)
	if err := vc.Bind(); err != nil {
		log.Printf("binding circuit for %s: %v", conn.RemoteAddr(), err)
		return
	}
	tracker.add(vc)
	defer tracker.remove(vc)
	defer vc.Disconnect()

	send := func(cmd commands.Command) bool {
		buf, err := vc.Send(cmd)
		if err != nil {
			log.Printf("%s: sending %v: %v", conn.RemoteAddr(), cmd.Kind(), err)
			return false
		}
		if _, err := conn.Write(buf); err != nil {
			log.Printf("%s: writing %v: %v", conn.RemoteAddr(), cmd.Kind(), err)
			return false
		}
		return true
	}

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Printf("%s: connection closed: %v", conn.RemoteAddr(), err)
			return
		}

		cmds, _, recvErr := vc.Recv(buf[:n])
		for _, cmd := range cmds {
			commandsHandled.With(prometheus.Labels{"kind": cmd.Kind().String()}).Inc()
			if !handleCommand(vc, cmd, reg, send) {
				return
			}
		}
		if recvErr != nil {
			log.Printf("%s: %v", conn.RemoteAddr(), recvErr)
			return
		}
	}
}

// handleCommand answers one decoded command. It returns false when the
// connection should be torn down.
func handleCommand(vc *circuit.VirtualCircuit, cmd commands.Command, reg *registry, send func(commands.Command) bool) bool {
	switch c := cmd.(type) {
	case *commands.VersionRequest:
		resp, err := commands.NewVersionResponse(commands.MinimumProtocolVersion)
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.EchoRequest:
		resp, err := commands.NewEchoResponse()
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.CreateChanRequest:
		ch, ok := vc.Channel(c.Cid)
		if !ok || ch.State() != castate.StateSendCreateChanResponse {
			return true
		}
		p, found := reg.lookup(c.ChannelName)
		if !found {
			fail, err := commands.NewCreateChFailResponse(c.Cid)
			if err != nil {
				return false
			}
			return send(fail)
		}
		resp, err := commands.NewCreateChanResponse(c.Cid, vc.NewSID(), p.typ, p.count)
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.ReadNotifyRequest:
		p, found := pvForChannel(vc, reg, c.Cid)
		status := uint32(0)
		var payload dbr.Value
		if found {
			payload = p.read()
		} else {
			status = 1
		}
		resp, err := commands.NewReadNotifyResponse(c.DataType, c.DataCount, c.IOID, status, payload)
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.WriteNotifyRequest:
		status := uint32(0)
		if p, found := pvForChannel(vc, reg, c.Cid); found {
			p.write(c.Payload)
		} else {
			status = 1
		}
		resp, err := commands.NewWriteNotifyResponse(c.DataType, c.DataCount, c.IOID, status)
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.EventAddRequest:
		p, found := pvForChannel(vc, reg, c.Cid)
		if !found {
			return true
		}
		resp, err := commands.NewEventAddResponse(c.SubscriptionID, c.DataType, c.DataCount, 0, p.read())
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.EventCancelRequest:
		resp, err := commands.NewEventCancelResponse(c.SubscriptionID, c.DataType, c.DataCount)
		if err != nil {
			return false
		}
		return send(resp)

	case *commands.ClearChannelRequest:
		resp, err := commands.NewClearChannelResponse(c.Cid, c.Sid)
		if err != nil {
			return false
		}
		return send(resp)

	default:
		return true
	}
}

func pvForChannel(vc *circuit.VirtualCircuit, reg *registry, cid uint32) (*pv, bool) {
	ch, ok := vc.Channel(cid)
	if !ok {
		return nil, false
	}
	return reg.lookup(ch.Name())
}
