package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/discovery"
	"github.com/mdouchement/corkboard/internal/export"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/mdouchement/corkboard/internal/server"
	"github.com/mdouchement/corkboard/internal/server/service"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "corkboard",
		Short:   "Shared corkboard server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)

	snapshotCmd.Flags().StringVarP(&snapshotDate, "date", "d", "", "Day of the snapshot (default today)")
	c.AddCommand(snapshotCmd)

	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "Export the snapshot of this day instead of the live board")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "corkboard.pdf", "PDF file")
	c.AddCommand(exportCmd)

	c.AddCommand(consoleCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var (
	snapshotDate string
	exportDate   string
	exportOutput string

	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			if path := konf.String("uploads_path"); path != "" {
				if err = os.MkdirAll(path, 0o755); err != nil {
					return errors.Wrap(err, "could not create uploads directory")
				}
			}

			return database.Init(konf.String("database_driver"), dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			return database.ReIndex(konf.String("database_driver"), dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			if konf.String("secret_key") == "" {
				return errors.New("secret_key not found")
			}

			logger, err := newLogger(konf)
			if err != nil {
				return err
			}

			db, err := database.Open(konf.String("database_driver"), dbnameWithPath(konf.String("database_path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			hub := realtime.NewHub(logger)
			defer hub.Close()

			engine := server.EchoEngine(server.IOC{
				Version:     version,
				Database:    db,
				Logger:      logger,
				Hub:         hub,
				SigningKey:  kdf(32, konf.MustBytes("secret_key")),
				TokenTTL:    konf.MustDuration("session.token_ttl"),
				UploadsPath: konf.String("uploads_path"),
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			listener, err := listen(address)
			if err != nil {
				return err
			}

			if konf.Bool("mdns.enabled") && !strings.HasPrefix(address, "unix:") {
				advertiser, err := discovery.Advertise(konf.String("mdns.instance"), address, version)
				if err != nil {
					return err
				}
				defer advertiser.Shutdown()
				logger.Infof("Board advertised as %s", discovery.ServiceType)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Infof("Server listening on %s", address)
				errc <- engine.Server.Serve(listener)
			}()

			select {
			case err = <-errc:
				if err != http.ErrServerClosed {
					return errors.Wrap(err, "could not run server")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return errors.Wrap(engine.Shutdown(ctx), "could not stop server")
		},
	}

	//
	//
	snapshotCmd = &coral.Command{
		Use:   "snapshot",
		Short: "Capture the board in the timeline (the server must be stopped)",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			db, err := database.Open(konf.String("database_driver"), dbnameWithPath(konf.String("database_path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			snapshot, err := service.NewSnapshotService(db, nil).Capture(nil, service.CaptureParams{Date: snapshotDate})
			if err != nil {
				return err
			}

			fmt.Printf("Captured %d items on %s\n", len(snapshot.Items), snapshot.Date)
			return nil
		},
	}

	//
	//
	exportCmd = &coral.Command{
		Use:   "export",
		Short: "Export the board to PDF (the server must be stopped)",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			db, err := database.Open(konf.String("database_driver"), dbnameWithPath(konf.String("database_path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			title := "Corkboard"
			var items []*model.Item
			if exportDate == "" {
				items, err = db.FindItems()
			} else {
				var snapshot *model.Snapshot
				snapshot, err = service.NewSnapshotService(db, nil).Find(exportDate)
				if err == nil {
					items = snapshot.Items
					title = "Corkboard of " + snapshot.Date
				}
			}
			if err != nil {
				return err
			}

			f, err := os.Create(exportOutput)
			if err != nil {
				return errors.Wrap(err, "could not create export")
			}
			defer f.Close()

			if err = export.PDF(f, title, items); err != nil {
				return err
			}
			fmt.Println("Exported to", exportOutput)
			return f.Close()
		},
	}
)

func listen(address string) (net.Listener, error) {
	parts := strings.Split(address, ":")
	if len(parts) == 2 && parts[0] == "unix" {
		socketFile := parts[1]
		if _, err := os.Stat(socketFile); err == nil {
			log.Printf("Removing existing %s\n", socketFile)
			os.Remove(socketFile)
		}
		listener, err := net.Listen(parts[0], socketFile)
		return listener, errors.Wrap(err, "could not listen")
	}

	listener, err := net.Listen("tcp", address)
	return listener, errors.Wrap(err, "could not listen")
}
