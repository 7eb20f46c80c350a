package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gamesync/client"
)

const redialDelay = 2 * time.Second

// gamesync 入口：连接服务端，运行同步核心的帧循环，并提供本地诊断接口
func main() {
	var (
		serverURL string
		adminAddr string
		envFile   string
		logFile   string
		debug     bool
	)
	flag.StringVar(&serverURL, "server", "ws://localhost:8303/ws", "game server websocket url")
	flag.StringVar(&adminAddr, "admin", "127.0.0.1:8080", "diagnostics listen address, empty to disable")
	flag.StringVar(&envFile, "env", "", "config file in .env format (default: ./.env if present)")
	flag.StringVar(&logFile, "log", "gamesync-client.log", "rolling log file path")
	flag.BoolVar(&debug, "debug", false, "development mode: contract violations panic")
	flag.Parse()

	if err := client.InitLogger(logFile, debug); err != nil {
		panic(err)
	}
	defer client.SyncLogger()

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := client.LoadConfig(envFiles...)
	if err != nil {
		client.Log.Fatalf("config: %v", err)
	}
	store := client.NewConfigStore(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := &client.ClientMetrics{}
	comps := &client.Components{}
	gc := client.NewGameClient(client.Options{
		Stepper:    client.SimpleStepper{FloorY: 0},
		Controls:   client.NewLocalControls(),
		Components: comps,
		Metrics:    metrics,
		Config:     cfg,
		RenderLoading: func(title, message string) {
			client.Log.Infof("%s: %s", title, message)
		},
	})
	comps.Register(client.NewDummyKeys(gc, store))
	store.OnIdentityChange(gc.RequestIdentityCheck)
	go readKeys(gc)

	if adminAddr != "" {
		mux := http.NewServeMux()
		client.NewAdmin(store, gc).Routes(mux)
		srv := &http.Server{Addr: adminAddr, Handler: mux}
		go func() {
			client.Log.Infof("diagnostics listening on http://%s/metrics", adminAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				client.Log.Errorf("admin listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	for ctx.Err() == nil {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		transport, err := client.Dial(dialCtx, serverURL, cfg.PredictionMarginTicks, metrics)
		cancel()
		if err != nil {
			client.Log.Warnf("connect %s: %v", serverURL, err)
			if !sleepCtx(ctx, redialDelay) {
				break
			}
			continue
		}
		client.Log.Infof("connected to %s", serverURL)
		gc.Attach(transport, transport)

		err = gc.Run(ctx, store)
		transport.Close()
		if errors.Is(err, client.ErrDisconnected) {
			client.Log.Warnf("disconnected from %s, redialing in %v", serverURL, redialDelay)
			if !sleepCtx(ctx, redialDelay) {
				break
			}
			continue
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			client.Log.Fatalf("frame loop: %v", err)
		}
	}
	client.Log.Info("Shutting down...")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// readKeys 标准输入每行一个按键名，转成一次按下与释放
func readKeys(gc *client.GameClient) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		key := strings.TrimSpace(sc.Text())
		if key == "" {
			continue
		}
		if !gc.QueueInput(client.InputEvent{Key: key, Pressed: true}) {
			client.Log.Warnf("input queue full, dropped %q", key)
			continue
		}
		gc.QueueInput(client.InputEvent{Key: key, Pressed: false})
	}
}
