package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/core/event"
	coresys "github.com/arenacore/server/internal/core/system"
	"github.com/arenacore/server/internal/data"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/handler"
	gonet "github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/persist"
	"github.com/arenacore/server/internal/scripting"
	"github.com/arenacore/server/internal/system"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              arenad  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       競技場模擬核心 · Go 遊戲伺服器      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations. A failure without
	// database.required falls back to memory-only mode.
	printSection("資料庫")
	db, err := openDatabase(cfg.Database, log)
	if err != nil {
		if cfg.Database.Required {
			return fmt.Errorf("database: %w", err)
		}
		log.Error("資料庫無法使用，改以純記憶體模式執行", zap.Error(err))
		printWarn("純記憶體模式 (不保存世界狀態)")
	}
	if db != nil {
		defer db.Close()
	}
	fmt.Println()

	// 4. Load data tables
	printSection("資料載入")
	abilities, err := data.LoadAbilityTable(cfg.Data.AbilityList)
	if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}
	printStat("技能模板", abilities.Count())

	classes, err := data.LoadClassTable(cfg.Data.ClassList)
	if err != nil {
		return fmt.Errorf("load class table: %w", err)
	}
	printStat("職業模板", classes.Count())

	// 5. Lua scripting engine
	var script game.DamageScript
	if cfg.Scripting.Enabled {
		luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		script = luaEngine
		printOK("Lua 腳本引擎載入完成")
	}
	fmt.Println()

	// 6. Agree on the tick schedule. The service integrates with the same
	// interval the loop ticks at.
	printSection("世界狀態")
	var (
		saver      system.Saver
		scheduleSt game.ScheduleStore
		worldRepo  *persist.WorldRepo
	)
	if db != nil {
		worldRepo = persist.NewWorldRepo(db)
		saver = worldRepo
		scheduleSt = persist.NewScheduleRepo(db)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	schedule := game.BootstrapSchedule(ctx, scheduleSt, cfg.Network.TickRate, log)
	cancel()
	if schedule.Degraded {
		printWarn(fmt.Sprintf("使用設定檔 tick 間隔 %s", schedule.Interval))
	} else {
		printOK(fmt.Sprintf("tick 排程 %s", schedule.Interval))
	}

	// 7. World and game service, restored from the archive
	opt, err := game.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("game options: %w", err)
	}
	bus := event.NewBus()
	opt.Abilities = abilities
	opt.Classes = classes
	opt.Script = script
	opt.Bus = bus
	svc := game.NewService(world.NewStore(nil), opt.WithSchedule(schedule), log)

	if worldRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		rs, err := svc.Restore(ctx, worldRepo)
		cancel()
		if err != nil {
			return fmt.Errorf("restore world: %w", err)
		}
		printStat("封存玩家", rs.Archived)
		printStat("異常中斷回收", int(rs.Recovered))
	}
	fmt.Println()

	// 8. Packet registry and handlers
	sessions := gonet.NewSessionStore()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Game:     svc,
		Sessions: sessions,
		Config:   cfg,
		Log:      log,
	}
	handler.RegisterAll(pktReg, deps)

	// 9. Create network server
	sessOpt := gonet.SessionOptions{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		WriteTimeout: cfg.Network.WriteTimeout,
		ReadTimeout:  cfg.Network.ReadTimeout,
	}
	if cfg.RateLimit.Enabled {
		sessOpt.PacketsPerSecond = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(gonet.ServerOptions{
		BindAddress:      cfg.Network.BindAddress,
		WebSocketAddress: cfg.Network.WebSocketAddress,
		WebSocketPath:    cfg.Network.WebSocketPath,
		Session:          sessOpt,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()
	go netServer.ServeWebSocket()

	// 10. Create systems and register with runner
	runner := coresys.NewRunner(schedule.Interval, log)
	runner.Register(system.NewInputSystem(netServer, pktReg, sessions, svc, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSimulationSystem(svc, time.Now, log))
	runner.Register(system.NewOutputSystem(svc, sessions, bus, log))
	persistSys := system.NewPersistenceSystem(svc, saver, cfg.Persistence.SaveIntervalTicks, cfg.Persistence.SaveTimeout, log)
	runner.Register(persistSys)

	// 11. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(schedule.Interval)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	if ws := netServer.WebSocketAddr(); ws != nil {
		printReady(fmt.Sprintf("WebSocket %s%s", ws.String(), cfg.Network.WebSocketPath))
	}
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", schedule.Interval))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(schedule.Interval)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			netServer.Shutdown()
			if err := persistSys.FinalSave(); err != nil {
				log.Error("關閉前存檔失敗", zap.Int("pending", persistSys.Pending()), zap.Error(err))
			}
			st := svc.Stats()
			overruns, _ := runner.Overruns()
			log.Info("伺服器已停止",
				zap.Uint64("tick", st.Tick),
				zap.Int("players", st.Players),
				zap.Int("archived", st.Archived),
				zap.Uint64("overruns", overruns),
			)
			return nil
		}
	}
}

// openDatabase connects and migrates. It returns (nil, nil) when the
// database is disabled.
func openDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*persist.DB, error) {
	if !cfg.Enabled {
		printWarn("資料庫已停用")
		return nil, nil
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	printOK("PostgreSQL 連線成功")

	version, err := persist.RunMigrations(ctx, db.Pool, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	printOK(fmt.Sprintf("資料庫遷移完成 (版本 %d)", version))
	return db, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
