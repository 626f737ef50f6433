// Command treesyncd is the long-running synchronization process: it loads
// a project manifest, watches the workspace it describes, reconciles file
// system events into change sets, and serves those change sets (plus
// reverse writes) to clients over plain HTTP and MCP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/synctree/synctree/internal/config"
	"github.com/synctree/synctree/internal/vfs"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("treesyncd: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := config.Logger(cfg)
	logger.Info("starting treesyncd", "project", cfg.ProjectPath, "host", cfg.Host, "port", cfg.Port)

	backend, err := vfs.NewOS(filepath.Dir(cfg.ProjectPath))
	if err != nil {
		logger.Error("failed to initialize filesystem backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	engine, err := NewEngine(cfg, backend, logger)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go engine.Run(ctx)
	go RunMCP(engine.cfg.Host, engine.cfg.Port+1, engine, logger)

	RunHTTP(engine.cfg.Host, engine.cfg.Port, engine, logger)
}

