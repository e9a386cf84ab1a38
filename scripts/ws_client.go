// Package main runs a demo WebSocket client for network events.
package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Seed a tiny road network
	init := []byte(`{
		"locations": [
			{"id": "depot", "name": "Depot", "lat": 40.7, "lng": -74.0, "type": "relief_center"},
			{"id": "zone1", "name": "Zone 1", "lat": 40.8, "lng": -73.9, "type": "disaster_zone"}
		],
		"connections": [
			{"from": "depot", "to": "zone1", "distance": 50, "time": 1}
		]
	}`)
	resp, err := http.Post(base+"/v1/network/initialize", "application/json", bytes.NewReader(init))
	if err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()
	log.Printf("network initialized: %s", resp.Status)

	// Connect to the event stream
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/events/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt map[string]any
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %v", evt)
		}
	}()

	// Trigger events: degrade the road, then jam it
	time.Sleep(500 * time.Millisecond)
	for _, body := range []string{
		`{"from": "depot", "to": "zone1", "condition": "poor"}`,
		`{"from": "depot", "to": "zone1", "traffic": "severe"}`,
	} {
		path := "/v1/network/condition"
		if bytes.Contains([]byte(body), []byte("traffic")) {
			path = "/v1/network/traffic"
		}
		resp, err := http.Post(base+path, "application/json", bytes.NewReader([]byte(body)))
		if err != nil {
			log.Fatal(err)
		}
		_ = resp.Body.Close()
	}

	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
