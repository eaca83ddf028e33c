// Command agent is the on-device entrypoint: it wires every package in this
// module into the single long-running process spec.md §5's "O: Cooperative
// executor" describes, realized here as ordinary goroutines coordinated by
// golang.org/x/sync/errgroup rather than a hand-rolled cooperative scheduler
// (this port is multi-threaded; nothing in the Go standard library forces
// the single-threaded, !Send-future assumption the source runtime made).
//
// Bootstrap config is a single JSON file rather than a multi-command CLI
// (spec.md's scope is one fixed on-device process), matching
// original_source/micro-rdk/src/native/entry.rs's minimal argument handling.
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"go.viam.com/micro-rdk-agent/app"
	"go.viam.com/micro-rdk-agent/app/configmonitor"
	"go.viam.com/micro-rdk-agent/app/periodic"
	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/datacapture"
	httpgrpc "go.viam.com/micro-rdk-agent/grpc/http2"
	dispatch "go.viam.com/micro-rdk-agent/grpc/server"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/mdns"
	"go.viam.com/micro-rdk-agent/registry"
	"go.viam.com/micro-rdk-agent/robot"
	loop "go.viam.com/micro-rdk-agent/server"
	"go.viam.com/micro-rdk-agent/storage"
	"go.viam.com/micro-rdk-agent/webrtc/dtls"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// bootConfig is the on-disk bootstrap document: everything needed before the
// cloud can be reached at all (spec.md §3 "Credentials").
type bootConfig struct {
	RobotID     string `json:"robot_id"`
	RobotSecret string `json:"robot_secret"`
	AppAddress  string `json:"app_address"`
	StorageDir  string `json:"storage_dir"`
}

const sessionBacklog = 4

func main() {
	configPath := flag.String("config", "/etc/viam/agent.json", "path to the bootstrap config file")
	flag.Parse()

	logger := logging.NewLogger("agent")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("agent exited", "error", err)
		os.Exit(1)
	}
}

// errRestartRequested is returned from run when the cloud configuration
// changed or NeedsRestart fired (spec.md §4.L "no partial reload; all
// changes are by restart", §4.G "NeedsRestart"). There is no in-process
// subsystem teardown/rebuild for this: the process exits and relies on an
// external supervisor (systemd, an init script) to start it again fresh,
// matching how the ESP32 and native targets both hand restart to a platform
// reboot rather than reconstructing state in place.
var errRestartRequested = errors.New("agent: restart requested")

func run(ctx context.Context, logger logging.Logger, configPath string) error {
	boot, err := loadBootConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading bootstrap config: %w", err)
	}

	store, err := storage.NewFileStore(boot.StorageDir)
	if err != nil {
		return err
	}

	creds, ok, err := storage.LoadRobotCredentials(ctx, store)
	if err != nil {
		return fmt.Errorf("loading robot credentials: %w", err)
	}
	if !ok {
		creds = storage.RobotCredentials{RobotID: boot.RobotID, RobotSecret: boot.RobotSecret, AppAddress: boot.AppAddress}
		if err := storage.StoreRobotCredentials(ctx, store, creds); err != nil {
			return fmt.Errorf("storing robot credentials: %w", err)
		}
	}
	appCreds := app.Credentials{RobotID: creds.RobotID, RobotSecret: creds.RobotSecret}

	// One-shot bootstrap: dial, authenticate, and fetch the declarative
	// config once up front. The LAN transport, resource graph, and mDNS
	// advertisement all come from this single fetch; Supervisor's own
	// reconnect loop (below) only keeps the cloud control-plane link alive,
	// it never touches any of this.
	bootClient, err := app.Dial(ctx, creds.AppAddress, appCreds, logger)
	if err != nil {
		return fmt.Errorf("dialing app client: %w", err)
	}
	if err := bootClient.Authenticate(ctx); err != nil {
		_ = bootClient.Close()
		return fmt.Errorf("authenticating: %w", err)
	}

	agentInfo := map[string]interface{}{"version": "0.1.0", "platform": "linux"}
	cfg, serverTime, err := bootClient.GetConfig(ctx, agentInfo)
	if err != nil {
		_ = bootClient.Close()
		return fmt.Errorf("fetching robot config: %w", err)
	}
	if !serverTime.IsZero() && serverTime.Year() < 2020 {
		logger.Warnw("server date looks wrong, device clock may be unset", "serverTime", serverTime)
	}

	cert, key, err := loadOrFetchCertificate(ctx, bootClient, store)
	if err != nil {
		_ = bootClient.Close()
		return fmt.Errorf("loading TLS certificate: %w", err)
	}
	_ = bootClient.Close()

	reg := registry.New()
	graph, buildErr := robot.New(reg, logger).Build(ctx, cfg)
	if buildErr != nil {
		logger.Errorw("one or more resources failed to build", "error", buildErr)
	}
	dispatcher := dispatch.NewDispatcher(graph, logger)

	collectors := datacapture.BuildCollectors(graph, cfg, logger)
	var dataStore *datacapture.Store
	var dataManager *datacapture.Manager
	if len(collectors) > 0 {
		dataStore = datacapture.NewStore(collectors)
		dataManager, err = datacapture.NewManager(collectors, dataStore, clock.New(), logger)
		if err != nil {
			return fmt.Errorf("starting data capture manager: %w", err)
		}
	}

	tlsCert, err := tls.X509KeyPair(cert, key)
	if err != nil {
		return fmt.Errorf("parsing TLS certificate: %w", err)
	}
	http2Server := httpgrpc.New(dispatcher, tlsCert, logger)

	udpConn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return fmt.Errorf("binding WebRTC UDP socket: %w", err)
	}
	localAddr := udpConn.LocalAddr().(*net.UDPAddr)
	mux := udpmux.New(udpConn, logger)
	dtlsEngine, err := dtls.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("initializing DTLS engine: %w", err)
	}

	sessions := make(chan *app.SignalingSession, sessionBacklog)
	serverLoop := &loop.Loop{
		HTTP2:      http2Server,
		Dispatcher: dispatcher,
		Mux:        mux,
		LocalAddr:  localAddr,
		DTLS:       dtlsEngine,
		Sessions:   sessions,
		Logger:     logger,
	}
	advertiser, err := mdns.New(cfg.Cloud.FQDN, cfg.Cloud.LocalFQDN, hostAddress(localAddr), loop.ListenPort, logger)
	if err != nil {
		return fmt.Errorf("starting mDNS advertiser: %w", err)
	}

	restart := make(chan struct{}, 1)
	requestRestart := func(reason string) func() {
		return func() {
			logger.Infow("restart requested", "reason", reason)
			select {
			case restart <- struct{}{}:
			default:
			}
		}
	}

	newTasks := func(c *app.Client) []periodic.Task {
		tasks := []periodic.Task{
			&app.SignalingTask{Client: c, RPCHost: cfg.Cloud.FQDN, Sessions: sessions},
			&app.NeedsRestartTask{Client: c, OnRestart: requestRestart("cloud requested restart")},
			&app.CertificateTask{Client: c, Store: store},
			&app.LogTask{Client: c, Drain: func() []app.LogEntry { return nil }},
			configmonitor.New(
				func(ctx context.Context) (config.RobotConfig, error) {
					newCfg, _, err := c.GetConfig(ctx, agentInfo)
					return newCfg, err
				},
				cfg,
				func(config.RobotConfig) {
					// spec.md §4.L: a config diff resets the cached configuration
					// slot before the restart hook fires. The reset failing is
					// logged and swallowed (spec.md §4 "storage errors"), not
					// allowed to block the restart it precedes.
					if err := store.Reset(context.Background(), storage.SlotRobotConfiguration); err != nil {
						logger.Errorw("resetting cached configuration", "error", err)
					}
					requestRestart("configuration changed")()
				},
				logger,
			),
		}
		if dataManager != nil {
			tasks = append(tasks, &datacapture.UploadTask{
				Client: c, PartID: creds.RobotID, Collectors: collectors, Store: dataStore,
			})
		}
		return tasks
	}

	dial := func(ctx context.Context) (*app.Client, error) {
		return app.Dial(ctx, creds.AppAddress, appCreds, logger)
	}
	supervisor := app.NewSupervisor(dial, newTasks, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(runCtx)
	group.Go(func() error { return supervisor.Run(gctx) })
	group.Go(func() error { return serverLoop.Run(gctx) })
	group.Go(func() error { return advertiser.Serve(gctx) })
	if dataManager != nil {
		group.Go(func() error { return dataManager.Run(gctx) })
	}
	group.Go(func() error {
		select {
		case <-restart:
			return errRestartRequested
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// the original signal-derived context was canceled, not runCtx by the
		// restart branch; report that as a clean shutdown.
		return ctx.Err()
	}
	return err
}

func loadBootConfig(path string) (bootConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return bootConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var bc bootConfig
	if err := json.Unmarshal(b, &bc); err != nil {
		return bootConfig{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if bc.StorageDir == "" {
		bc.StorageDir = "/var/lib/viam-agent"
	}
	if bc.AppAddress == "" {
		bc.AppAddress = "app.viam.com:443"
	}
	return bc, nil
}

// loadOrFetchCertificate returns this agent's LAN TLS certificate, fetching
// it from the cloud and persisting it if storage holds none yet (spec.md
// §4.G "Certificate", §4.M).
func loadOrFetchCertificate(ctx context.Context, c *app.Client, store storage.Store) (cert, key []byte, err error) {
	cert, key, ok, err := app.LoadStoredCertificate(ctx, store)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return cert, key, nil
	}

	slot, cert, key, err := c.Certificate(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := json.Marshal(struct {
		Cert []byte `json:"cert"`
		Key  []byte `json:"key"`
	}{cert, key})
	if err != nil {
		return nil, nil, fmt.Errorf("encoding certificate: %w", err)
	}
	if err := store.Put(ctx, slot, b); err != nil {
		return nil, nil, fmt.Errorf("storing certificate: %w", err)
	}
	return cert, key, nil
}

// hostAddress returns the hostname mDNS advertises alongside loop.ListenPort
// (the LAN gRPC TCP port); the WebRTC UDP socket's own ephemeral port plays
// no part in this, mDNS only ever advertises the fixed TCP port. Resolving
// that hostname to an address is left to the network (spec.md Non-goals:
// provisioning UI is out of scope here).
func hostAddress(_ *net.UDPAddr) string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "viam-agent.local"
	}
	return hostname
}
