package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sceneling/sceneling/internal/app"
	"github.com/sceneling/sceneling/internal/config"
	"github.com/sceneling/sceneling/internal/logging"
)

var (
	speakText  string
	speakVoice string
	speakOut   string

	speakCmd = &cobra.Command{
		Use:   "speak",
		Short: "Synthesize text to a WAV file",
		Args:  cobra.NoArgs,
		RunE:  runSpeak,
	}
)

func init() {
	speakCmd.Flags().StringVar(&speakText, "text", "", "text to synthesize")
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "voice name (see /api/tts/voices)")
	speakCmd.Flags().StringVarP(&speakOut, "out", "o", "speech.wav", "output WAV path")
	_ = speakCmd.MarkFlagRequired("text")
}

func runSpeak(cmd *cobra.Command, _ []string) error {
	if err := validateSpeakText(speakText); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	built, err := app.Build(cmd.Context(), cfg, app.Options{
		Logger:   logger,
		Offline:  offline,
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}
	defer built.Cleanup()

	if built.Speaker.Placeholder() {
		return errors.New("speech synthesis needs DASHSCOPE_API_KEY or --offline")
	}
	wav, ok := built.Speaker.SpeakWAV(cmd.Context(), speakText, speakVoice)
	if !ok {
		return errors.New("speech synthesis failed")
	}
	if err := os.WriteFile(speakOut, wav, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", speakOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %s)\n", speakOut, humanize.Bytes(uint64(len(wav))), built.Voice.Mode)
	return nil
}

func validateSpeakText(text string) error {
	n := len([]rune(strings.TrimSpace(text)))
	if n == 0 || n > 1000 {
		return fmt.Errorf("text must be 1-1000 characters, got %d", n)
	}
	return nil
}
