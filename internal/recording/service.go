// Package recording hands an approved capture over to the recording service.
package recording

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"github.com/petems/screenrecord/internal/consent"
	"github.com/rs/zerolog"
)

var ErrNoCommand = errors.New("no recorder command configured")

// StartIntent describes one recording to start.
type StartIntent struct {
	Payload    consent.Payload
	UseAudio   bool
	ShowTaps   bool
	LowQuality bool
	OutputDir  string
}

// NewStartIntent builds the intent the service is started with.
func NewStartIntent(payload consent.Payload, useAudio, showTaps, lowQuality bool) StartIntent {
	return StartIntent{
		Payload:    payload,
		UseAudio:   useAudio,
		ShowTaps:   showTaps,
		LowQuality: lowQuality,
	}
}

// Args renders the intent as recorder command-line flags.
func (s StartIntent) Args() []string {
	args := []string{"--grant=" + s.Payload.Grant}
	if s.Payload.Display != "" {
		args = append(args, "--display="+s.Payload.Display)
	}
	if s.OutputDir != "" {
		args = append(args, "--output-dir="+s.OutputDir)
	}
	if s.UseAudio {
		args = append(args, "--audio")
	}
	if s.ShowTaps {
		args = append(args, "--show-taps")
	}
	if s.LowQuality {
		args = append(args, "--low-quality")
	}
	return args
}

// Descriptor identifies a started recording.
type Descriptor struct {
	PID       int
	Argv      []string
	StartedAt time.Time
}

// Service starts recordings as long-running processes.
type Service interface {
	StartForeground(ctx context.Context, intent StartIntent) (Descriptor, error)
}

// ExecService runs an external recorder binary. The process outlives the
// dialog; its exit is only logged.
type ExecService struct {
	argv      []string
	outputDir string
	log       zerolog.Logger
}

// NewExecService splits command with shell quoting rules.
func NewExecService(command, outputDir string, log zerolog.Logger) (*ExecService, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid recorder command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	return &ExecService{argv: argv, outputDir: outputDir, log: log}, nil
}

func (s *ExecService) StartForeground(ctx context.Context, intent StartIntent) (Descriptor, error) {
	if intent.OutputDir == "" {
		intent.OutputDir = s.outputDir
	}
	if intent.OutputDir != "" {
		if err := os.MkdirAll(intent.OutputDir, 0755); err != nil {
			return Descriptor{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	argv := append(append([]string{}, s.argv...), intent.Args()...)

	// Not tied to ctx: the recording must survive the dialog closing.
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return Descriptor{}, fmt.Errorf("failed to start recorder: %w", err)
	}

	d := Descriptor{PID: cmd.Process.Pid, Argv: argv, StartedAt: time.Now()}
	s.log.Info().Int("pid", d.PID).Strs("argv", argv).Msg("Recorder started")

	go func() {
		if err := cmd.Wait(); err != nil {
			s.log.Error().Err(err).Int("pid", d.PID).Msg("Recorder exited")
			return
		}
		s.log.Info().Int("pid", d.PID).Msg("Recorder finished")
	}()

	return d, nil
}
