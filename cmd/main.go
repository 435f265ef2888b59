package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"neurofleetx/internal/api"
	"neurofleetx/internal/auth"
	"neurofleetx/internal/config"
	"neurofleetx/internal/export"
	"neurofleetx/internal/fleet"
	"neurofleetx/internal/models"
	"neurofleetx/internal/routing"
	"neurofleetx/internal/sim"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "neurofleetx",
		Short: "NeuroFleetX - Fleet monitoring dashboard backend",
		Long: `A fleet monitoring backend with an in-memory vehicle store, a periodic
telemetry simulation, low-battery alerting, route optimization and data
export, served over a REST API with a live websocket stream.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(fleetCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newStore builds a demo-seeded store from the environment config
func newStore() (*fleet.Store, *config.Config) {
	cfg := config.Load()
	store := fleet.New(cfg)
	store.SeedDemo()
	return store, cfg
}

// serveCmd starts the REST API server
func serveCmd() *cobra.Command {
	var port int
	var startEnabled bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg := newStore()
			if cmd.Flags().Changed("port") {
				cfg.HTTPPort = strconv.Itoa(port)
			}

			hub := api.NewHub()
			simulator := sim.New(store, cfg, sim.WithOnTick(hub.Broadcast))
			simulator.SetEnabled(startEnabled)

			server := api.NewServer(store, simulator, auth.New(cfg), routing.New(nil), export.New(store), hub)

			addr := ":" + cfg.HTTPPort
			httpServer := &http.Server{Addr: addr, Handler: server.Router()}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return simulator.Run(ctx)
			})
			g.Go(func() error {
				log.Info().Str("addr", addr).Bool("simulation", startEnabled).Msg("API server listening")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				hub.Close()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Server port")
	cmd.Flags().BoolVar(&startEnabled, "simulate", false, "Start with simulation mode enabled")
	return cmd
}

// simulateCmd runs simulation ticks without the server
func simulateCmd() *cobra.Command {
	var ticks int
	var seed int64
	var rain bool
	var congestion string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulation ticks and print the resulting fleet state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg := newStore()
			if seed != 0 {
				cfg.SimSeed = seed
			}

			if rain {
				w := store.Weather()
				w.Condition = "Rain"
				store.SetWeather(w)
			}
			if congestion != "" {
				t := store.Traffic()
				t.CongestionLevel = models.CongestionLevel(congestion)
				store.SetTraffic(t)
			}

			simulator := sim.New(store, cfg)
			simulator.SetEnabled(true)

			var snap sim.Snapshot
			start := time.Now()
			for i := 0; i < ticks; i++ {
				snap = simulator.Tick()
			}
			elapsed := time.Since(start)

			fmt.Printf("Ran %d ticks in %v\n\n", ticks, elapsed)
			fmt.Printf("%-4s %-18s %-10s %8s %8s %10s\n", "ID", "Name", "Status", "Battery", "Speed", "Mileage")
			for _, v := range snap.Vehicles {
				fmt.Printf("%-4d %-18s %-10s %7.1f%% %8.1f %10.1f\n",
					v.ID, v.Name, v.Status, v.Battery, v.Speed, v.Maintenance.Mileage)
			}

			if len(snap.Alerts) > 0 {
				fmt.Println("\nOpen alerts:")
				for _, a := range snap.Alerts {
					fmt.Printf("  [%s] %s\n", a.Priority, a.Message)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "t", 10, "Number of ticks to run")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the current time)")
	cmd.Flags().BoolVar(&rain, "rain", false, "Simulate rainy weather")
	cmd.Flags().StringVar(&congestion, "congestion", "", "Override congestion level (low, moderate, high)")
	return cmd
}

// routeCmd runs the route optimizer once
func routeCmd() *cobra.Command {
	var origin, destination, vehicleType, priority string
	var seed int64

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Optimize a route under the current mock conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := newStore()

			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewSource(seed))
			}
			optimizer := routing.New(rng)

			req := models.RouteRequest{
				Origin:      origin,
				Destination: destination,
				VehicleType: models.VehicleType(vehicleType),
				Priority:    models.RoutePriority(priority),
			}
			if !req.VehicleType.Valid() {
				return fmt.Errorf("unknown vehicle type: %s", vehicleType)
			}

			result := optimizer.Optimize(req, store.Weather(), store.Traffic())

			fmt.Printf("Route: %s -> %s\n", origin, destination)
			fmt.Println("==========================================")
			fmt.Printf("  Distance:         %d km\n", result.DistanceKM)
			fmt.Printf("  Estimated Time:   %d min\n", result.EstimatedTimeMin)
			fmt.Printf("  Traffic Delay:    %d min\n", result.TrafficDelayMin)
			fmt.Printf("  Weather Impact:   %v\n", result.WeatherImpact)
			fmt.Printf("  Fuel Savings:     %d%%\n", result.FuelSavingsPct)
			fmt.Printf("  CO2 Reduction:    %d kg\n", result.CO2ReductionKG)
			fmt.Printf("  Recommended:      %s\n", result.RecommendedVehicle)
			fmt.Println("  Waypoints:")
			for _, wp := range result.Waypoints {
				fmt.Printf("    %.4f, %.4f\n", wp.Lat, wp.Lng)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "from", "Delhi", "Route origin")
	cmd.Flags().StringVar(&destination, "to", "Gurugram", "Route destination")
	cmd.Flags().StringVar(&vehicleType, "type", "car", "Vehicle type (car, van, truck, scooter)")
	cmd.Flags().StringVar(&priority, "priority", "fastest", "Route priority (fastest, shortest, eco)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the current time)")
	return cmd
}

// fleetCmd manages the demo fleet
func fleetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Fleet inspection commands",
	}

	// List subcommand
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the demo fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := newStore()

			fmt.Printf("%-4s %-18s %-8s %-10s %8s %-14s %-18s\n",
				"ID", "Name", "Type", "Status", "Battery", "Plate", "Driver")
			for _, v := range store.Vehicles() {
				fmt.Printf("%-4d %-18s %-8s %-10s %7.1f%% %-14s %-18s\n",
					v.ID, v.Name, v.Type, v.Status, v.Battery, v.LicensePlate, v.Driver)
			}

			return nil
		},
	}

	// Maintenance subcommand
	maintenanceCmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Show the fleet maintenance summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := newStore()

			fmt.Println("Fleet Maintenance Summary")
			fmt.Println("=========================")
			for _, gc := range store.MaintenanceSummary() {
				fmt.Printf("  %-10s %d\n", gc.Status, gc.Count)
			}
			fmt.Println()

			fmt.Printf("%-4s %-18s %-10s %-12s %-12s\n", "ID", "Name", "Grade", "Last", "Next")
			for _, v := range store.Vehicles() {
				fmt.Printf("%-4d %-18s %-10s %-12s %-12s\n",
					v.ID, v.Name, store.Grade(v), v.LastService, v.NextService)
			}

			return nil
		},
	}

	cmd.AddCommand(listCmd, maintenanceCmd)
	return cmd
}

// exportCmd writes a dataset to a file or stdout
func exportCmd() *cobra.Command {
	var dataset string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := newStore()
			exporter := export.New(store)

			d := export.Dataset(dataset)
			if !d.Valid() {
				return fmt.Errorf("unknown dataset: %s", dataset)
			}
			f := export.Format(format)
			if !f.Valid() {
				return fmt.Errorf("unknown format: %s", format)
			}
			if f == export.FormatPDF {
				fmt.Println("PDF export acknowledged, no file produced")
				return nil
			}

			out := os.Stdout
			if output == "" {
				output = exporter.Filename(d, f, time.Now())
			}
			if output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("error creating output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := exporter.Write(out, d, f); err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Printf("Exported %s data to %s\n", dataset, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "data", "d", "fleet", "Dataset (fleet, maintenance, analytics)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Format (json, csv, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <dataset>_data_<date>.<ext>, - for stdout)")
	return cmd
}
