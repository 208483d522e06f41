// Package batch prepares a whole song library: every song directory's chart
// is converted to MIDI and rejections are tallied by reason.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/leafo/usdxmidi/usdx"
	"github.com/sirupsen/logrus"
)

// Song is one song directory of the library
type Song struct {
	Dir   string
	Chart string
	Audio string // empty when the directory has no .mp3
}

// Options configure Prepare
type Options struct {
	OutputDir string
	// Workers is the number of concurrent conversions, defaults to NumCPU
	Workers int
	// RequireAudio skips song directories that have no .mp3
	RequireAudio bool
	Lyrics       bool
	Logger       logrus.FieldLogger
}

// Failure records a chart whose conversion hit a fatal error
type Failure struct {
	Song Song
	Err  error
}

// Report tallies the outcome of a batch run
type Report struct {
	Converted []string                     // written MIDI paths
	Rejected  map[usdx.RejectionReason]int // skip counts by reason
	Failures  []Failure
	Skipped   []string // song directories missing a chart (or audio)
}

// Total is the number of songs that were looked at
func (r *Report) Total() int {
	total := len(r.Converted) + len(r.Failures) + len(r.Skipped)
	for _, count := range r.Rejected {
		total += count
	}
	return total
}

// FindSongs lists the immediate sub directories of libraryDir and picks the
// first .txt chart (and .mp3 audio) of each. Directories without a chart are
// returned as skipped.
func FindSongs(libraryDir string) (songs []Song, skipped []string, err error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading library: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(libraryDir, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading song directory: %w", err)
		}

		song := Song{Dir: dir}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			name := file.Name()
			switch strings.ToLower(filepath.Ext(name)) {
			case ".txt":
				if song.Chart == "" {
					song.Chart = filepath.Join(dir, name)
				}
			case ".mp3":
				if song.Audio == "" {
					song.Audio = filepath.Join(dir, name)
				}
			}
		}

		if song.Chart == "" {
			skipped = append(skipped, dir)
			continue
		}
		songs = append(songs, song)
	}

	return songs, skipped, nil
}

// Prepare converts every song of libraryDir into opts.OutputDir. Fatal
// conversion errors are collected in the report and do not stop the run;
// only a cancelled context or an unreadable library does.
func Prepare(ctx context.Context, libraryDir string, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	songs, skipped, err := FindSongs(libraryDir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Rejected: make(map[usdx.RejectionReason]int),
		Skipped:  skipped,
	}
	for _, dir := range skipped {
		log.WithField("song", dir).Warn("chart file missing, skipping")
	}

	conv := usdx.NewConverter(opts.OutputDir)
	conv.Lyrics = opts.Lyrics
	conv.Logger = log

	jobs := make(chan Song)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for song := range jobs {
				outcome, err := conv.Convert(song.Chart)

				mu.Lock()
				report.record(log, song, outcome, err)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, song := range songs {
		if opts.RequireAudio && song.Audio == "" {
			log.WithField("song", song.Dir).Warn("audio file missing, skipping")
			mu.Lock()
			report.Skipped = append(report.Skipped, song.Dir)
			mu.Unlock()
			continue
		}

		select {
		case jobs <- song:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Strings(report.Converted)
	sort.Strings(report.Skipped)
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Song.Dir < report.Failures[j].Song.Dir
	})

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("batch interrupted: %w", err)
	}

	log.WithFields(logrus.Fields{
		"converted": len(report.Converted),
		"rejected":  report.rejectedTotal(),
		"failed":    len(report.Failures),
		"skipped":   len(report.Skipped),
	}).Info("batch finished")

	return report, nil
}

func (r *Report) record(log logrus.FieldLogger, song Song, outcome usdx.Outcome, err error) {
	entry := log.WithField("song", song.Dir)

	switch {
	case err != nil:
		entry.WithError(err).Error("conversion failed")
		r.Failures = append(r.Failures, Failure{Song: song, Err: err})
	case !outcome.Verdict.Accepted:
		entry.WithField("reason", outcome.Verdict.Reason).Info("song is not suitable, skipping")
		r.Rejected[outcome.Verdict.Reason]++
	default:
		entry.WithField("midi", outcome.MidiPath).Info("prepared")
		r.Converted = append(r.Converted, outcome.MidiPath)
	}
}

func (r *Report) rejectedTotal() int {
	total := 0
	for _, count := range r.Rejected {
		total += count
	}
	return total
}

// FailedWith reports whether any failure matches target
func (r *Report) FailedWith(target error) bool {
	for _, failure := range r.Failures {
		if errors.Is(failure.Err, target) {
			return true
		}
	}
	return false
}

// Clean removes everything below dir and recreates it empty
func Clean(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("error removing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating %s: %w", dir, err)
	}
	return nil
}
