package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/api"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/config"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/mapdata"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/sim"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/transport"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	}

	log.Println("================================")
	log.Println(" ELUDING - GAME SERVER")
	log.Println("================================")

	appConfig := config.Load()
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil || p <= 0 || p > 65535 {
			log.Fatalf("invalid port argument %q", os.Args[1])
		}
		appConfig.Network.Port = p
	}

	worldMap, err := mapdata.Load(appConfig.World.MapPath)
	if err != nil {
		log.Fatalf("failed to load map %s: %v", appConfig.World.MapPath, err)
	}
	log.Printf("map loaded: %s (%d areas)", worldMap.Name, len(worldMap.Areas))

	mapJSON, err := os.ReadFile(appConfig.World.MapPath)
	if err != nil {
		log.Fatalf("failed to read map file for MapData replies: %v", err)
	}

	simulation := sim.New(worldMap, appConfig.Limits, time.Now().UnixNano())
	simulation.SetMapJSON(mapJSON)

	if err := simulation.EventLog().Start(appConfig.Network.EventLogPath); err != nil {
		log.Printf("event log disabled: %v", err)
	} else {
		log.Printf("event log: %s", appConfig.Network.EventLogPath)
	}

	conn, err := transport.Listen(appConfig.Network.Port)
	if err != nil {
		log.Fatalf("failed to bind UDP port %d: %v", appConfig.Network.Port, err)
	}
	log.Printf("listening for players on UDP :%d", appConfig.Network.Port)

	tr := transport.New(conn, simulation, log.Default())

	hub := api.NewWebSocketHub()
	go hub.Run()

	debugCfg := api.DefaultObservabilityConfig()
	debugCfg.ListenAddr = appConfig.Network.DebugAddr
	if os.Getenv("ELUDING_DISABLE_DEBUG_SERVER") == "true" {
		debugCfg.Enabled = false
	}
	if err := api.StartDebugServer(debugCfg, simulation, hub); err != nil {
		log.Printf("debug server disabled: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready. press Ctrl+C to stop.")
	runLoop(simulation, tr, hub, appConfig.World.TickRate, quit)

	log.Println("shutting down...")
	simulation.EventLog().Stop()
	conn.Close()
	log.Println("goodbye")
}

// runLoop drives the fixed-rate simulation step: drain inbound UDP,
// advance the simulation by the wall-clock time since the previous
// tick, broadcast the resulting snapshot
// to every connected player and, throttled, to spectators. Blocks
// until a shutdown signal arrives.
func runLoop(s *sim.Simulation, tr *transport.Transport, hub *api.WebSocketHub, tickRate float64, quit <-chan os.Signal) {
	dt := 1.0 / tickRate
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			start := time.Now()
			elapsed := start.Sub(last).Seconds()
			last = start

			tr.Drain()
			snap := s.Tick(elapsed)
			tr.Broadcast(snap)
			hub.PublishSnapshot(snap)

			api.RecordTick(time.Since(start))
			api.UpdatePlayerCount(len(snap.Players))
			api.UpdateEnemyCount(len(snap.Enemies))
			total, dropped, _ := s.EventLog().Stats()
			api.UpdateEventLogStats(total, dropped)
		}
	}
}
