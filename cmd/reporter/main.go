package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/capture"
	"github.com/shenikar/traffic_violation_reporting/internal/client"
	"github.com/shenikar/traffic_violation_reporting/internal/location"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/submission"
	"github.com/shenikar/traffic_violation_reporting/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("REPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "reporter",
		Short:         "Submit traffic violation reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("api-url", "http://localhost:8080", "Base URL of the reporting API")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	root.PersistentFlags().String("log-level", "warn", "Log level")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newSubmitCmd(v), newStatusCmd(v))
	return root
}

func newAPIClient(v *viper.Viper) (*client.Client, *logrus.Logger) {
	log := logger.NewText(v.GetString("log-level"))
	return client.New(v.GetString("api-url"), v.GetDuration("timeout"), log), log
}

func newSubmitCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Capture evidence, detect location and submit a report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd, v)
		},
	}
	cmd.Flags().String("photo", "", "Image file (JPEG or PNG) used as the camera frame")
	cmd.Flags().String("video", "", "Video file (WebM) used as the recording")
	cmd.Flags().String("description", "", "Description of the violation")
	cmd.Flags().Float64("lat", 0, "Latitude of the violation")
	cmd.Flags().Float64("lon", 0, "Longitude of the violation")
	cmd.MarkFlagsMutuallyExclusive("photo", "video")
	cmd.MarkFlagsOneRequired("photo", "video")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func runSubmit(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	api, log := newAPIClient(v)
	out := cmd.OutOrStdout()

	devices := capture.StillImageDevices{ImagePath: v.GetString("photo"), VideoPath: v.GetString("video")}
	camera := capture.NewController(devices, log)
	defer camera.Release()

	if err := captureEvidence(ctx, camera, devices); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), capture.Message(err))
		return err
	}
	evidence := camera.Evidence()
	fmt.Fprintf(out, "Captured %s (%s, %d bytes)\n", evidence.Name, evidence.ContentType, evidence.Size())

	locator := location.NewLocator(location.StaticSource{Latitude: v.GetFloat64("lat"), Longitude: v.GetFloat64("lon")}, api, log)
	loc, err := locator.Locate(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), location.Message(err))
		return err
	}
	fmt.Fprintf(out, "Location: %s, %s (%.6f, %.6f)\n", loc.City, loc.State, loc.Latitude, loc.Longitude)

	orchestrator := submission.NewOrchestrator(api, api, api, camera, log)
	orchestrator.SetDescription(v.GetString("description"))
	orchestrator.SetLocation(loc)
	orchestrator.SetEvidence(evidence)

	report, err := orchestrator.Submit(ctx, func(p submission.Progress) {
		if p.Step > submission.StepIdle {
			fmt.Fprintf(out, "[%d/%d] %s\n", p.Step, submission.StepSubmitted, p.Label)
		}
	})
	if err != nil {
		var stageErr *submission.StageError
		if errors.As(err, &stageErr) && stageErr.Kind == submission.KindConflict {
			return fmt.Errorf("%w (run submit again to retry with a new incident ID)", err)
		}
		return err
	}

	fmt.Fprintf(out, "Your Incident ID: %s\n", report.IncidentID)
	return nil
}

func captureEvidence(ctx context.Context, camera *capture.Controller, devices capture.StillImageDevices) error {
	if devices.ImagePath != "" {
		if err := camera.StartPhoto(ctx); err != nil {
			return err
		}
		_, err := camera.Capture()
		return err
	}

	if err := camera.StartVideo(ctx); err != nil {
		return err
	}
	_, err := camera.Stop()
	return err
}

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status <incident-id>",
		Short: "Show a submitted report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _ := newAPIClient(v)
			report, err := api.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, r *models.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Incident ID: %s\n", r.IncidentID)
	fmt.Fprintf(out, "Status:      %s\n", r.Status)
	fmt.Fprintf(out, "Location:    %s, %s (%.6f, %.6f)\n", r.City, r.State, r.Latitude, r.Longitude)
	fmt.Fprintf(out, "Submitted:   %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Description: %s\n", r.Description)
	for _, u := range r.MediaURLs {
		fmt.Fprintf(out, "Evidence:    %s\n", u)
	}
}
