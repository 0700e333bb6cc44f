package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/service"
	"github.com/ing-bank/zkflow-sub006/storage"
	"github.com/spf13/cobra"
	"go.vocdoni.io/dvote/db/metadb"
)

var serveFlags struct {
	Host string
	Port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the witness API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			conf.API.Host = serveFlags.Host
		}
		if cmd.Flags().Changed("port") {
			conf.API.Port = serveFlags.Port
		}
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		d, err := conf.Digest()
		if err != nil {
			return err
		}
		if len(conf.Artifacts) > 0 {
			artifacts := make(map[string]*circuits.CircuitArtifacts, len(conf.Artifacts))
			for name, ac := range conf.Artifacts {
				if artifacts[name], err = ac.CircuitArtifacts(); err != nil {
					return fmt.Errorf("artifacts of %s: %w", name, err)
				}
			}
			if err := service.LoadArtifacts(10*time.Minute, artifacts); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(conf.Storage.Datadir, 0o750); err != nil {
			return err
		}
		database, err := metadb.New(conf.Storage.Backend, conf.Storage.Datadir)
		if err != nil {
			return fmt.Errorf("could not open database: %w", err)
		}
		stg, err := storage.New(database)
		if err != nil {
			return err
		}
		defer stg.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		api := service.NewAPI(stg, catalog, d, conf.API.Host, conf.API.Port)
		if err := api.Start(ctx); err != nil {
			return err
		}
		host, port := api.HostPort()
		log.Infow("serving witness api", "host", host, "port", port, "layouts", catalog.Names(), "digest", d.Name())
		<-ctx.Done()
		log.Infow("shutting down")
		api.Stop()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.Host, "host", "", "listen host, overrides the config")
	serveCmd.Flags().IntVarP(&serveFlags.Port, "port", "p", 0, "listen port, overrides the config")
}
