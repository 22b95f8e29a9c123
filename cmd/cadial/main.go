// Command cadial is a demonstration CLIENT-role Channel Access host: it
// dials a server, drives one VirtualCircuit over the connection, creates
// a single channel, and subscribes to it. It exists to exercise
// internal/ca/circuit end to end over a real socket; it is not a general
// purpose CA client.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/circuit"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/caerr"
	"github.com/caproto-go/caproto/internal/transport"
)

var (
	serverAddr = flag.String("server", "localhost:5064",
		"host:port of the Channel Access server to dial")
	pvName = flag.String("pv", "example:pv",
		"name of the process variable to create a channel for and monitor")
	priority = flag.Uint("priority", 0,
		"circuit priority to request (0-99)")
	listenAddress = flag.String("listen", ":8080",
		"host:port to serve /metrics and the status page on")
	keepAlive = flag.Duration("keepalive", 15*time.Second,
		"TCP keepalive period for the circuit's connection")
)

var (
	bytesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cadial",
		Name:      "BytesSent",
		Help:      "total bytes written to the circuit's connection",
	})
	bytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cadial",
		Name:      "BytesReceived",
		Help:      "total bytes read from the circuit's connection",
	})
	commandsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadial",
		Name:      "CommandsReceived",
		Help:      "commands decoded off the circuit, by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(bytesSent)
	prometheus.MustRegister(bytesReceived)
	prometheus.MustRegister(commandsReceived)
}

func main() {
	flag.Parse()

	log.Printf("dialing %s", *serverAddr)
	conn, err := transport.Dial(*serverAddr, *keepAlive)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	vc := circuit.New(caerr.Client, conn.RemoteAddr().String(), uint16(*priority))
	if err := vc.Bind(); err != nil {
		log.Fatal(err)
	}

	send := func(cmd commands.Command) {
		buf, err := vc.Send(cmd)
		if err != nil {
			log.Fatalf("sending %v: %v", cmd.Kind(), err)
		}
		if _, err := conn.Write(buf); err != nil {
			log.Fatalf("writing %v to connection: %v", cmd.Kind(), err)
		}
		bytesSent.Add(float64(len(buf)))
	}

	versionReq, err := commands.NewVersionRequest(uint16(*priority), commands.MinimumProtocolVersion)
	if err != nil {
		log.Fatal(err)
	}
	send(versionReq)

	if hostname, err := os.Hostname(); err == nil {
		if hn, err := commands.NewHostNameRequest(hostname); err == nil {
			send(hn)
		}
	}
	if cn, err := commands.NewClientNameRequest(os.Getenv("USER")); err == nil {
		send(cn)
	}

	ch, err := vc.AddChannel(*pvName)
	if err != nil {
		log.Fatal(err)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { handleDialStatus(w, r, vc, ch) })
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(*listenAddress, nil)

	log.Printf("entering circuit read loop")
	buf := make([]byte, 4096)
	subscribed := false
	for {
		if ch.State() == castate.StateSendCreateChanRequest {
			req, err := commands.NewCreateChanRequest(ch.CID(), ch.Name())
			if err != nil {
				log.Fatal(err)
			}
			send(req)
		}

		if ch.State() == castate.StateConnected && !subscribed {
			sub := vc.NewSubscriptionID()
			req, err := commands.NewEventAddRequest(ch.CID(), sub, ch.NativeDataType(), ch.NativeDataCount(), commands.EventMaskValue|commands.EventMaskAlarm)
			if err != nil {
				log.Fatal(err)
			}
			send(req)
			subscribed = true
		}

		n, err := conn.Read(buf)
		if err != nil {
			log.Fatalf("reading from connection: %v", err)
		}
		bytesReceived.Add(float64(n))

		cmds, _, err := vc.Recv(buf[:n])
		for _, cmd := range cmds {
			commandsReceived.With(prometheus.Labels{"kind": cmd.Kind().String()}).Inc()
			logDecoded(cmd)
		}
		if err != nil {
			log.Fatalf("processing received data: %v", err)
		}
	}
}

func logDecoded(cmd commands.Command) {
	switch c := cmd.(type) {
	case *commands.EventAddResponse:
		v, _ := c.Payload.Float64s()
		log.Printf("monitor update: %v", v)
	case *commands.CreateChanResponse:
		log.Printf("channel created: sid=%d type=%v count=%d", c.Sid, c.NativeDataType, c.NativeDataCount)
	case *commands.CreateChFailResponse:
		log.Printf("channel creation failed for cid=%d", c.Cid)
	case *commands.ErrorResponse:
		log.Printf("server reported an error: %s", c.Message)
	default:
		log.Printf("received %v", cmd.Kind())
	}
}
