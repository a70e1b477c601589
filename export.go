package fidimag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ExportConfig configures the exporting of a band relaxation.
type ExportConfig struct {
	Directory string
	Filename  string
	AsCSV     bool // Energies of every image at every step.
	Summary   bool // JSON summary of the final band.
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.Summary
}

func (c ExportConfig) path(prefix, ext string) string {
	name := fmt.Sprintf("%s-%s", prefix, c.Filename)
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	dir := c.Directory
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+"."+ext)
}

// createEnergyFile returns a file which requires a defer close statement!
func createEnergyFile(conf ExportConfig, images int) (*os.File, error) {
	f, err := os.Create(conf.path("energies", "csv"))
	if err != nil {
		return nil, err
	}
	hdr := make([]string, images)
	for i := range hdr {
		hdr[i] = fmt.Sprintf("E%d", i)
	}
	// Header
	_, err = f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are the energies of every image at the start of each step.
step,time,maxdYdt,%s`, time.Now().UTC(), strings.Join(hdr, ",")))
	if err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// StreamBand streams the band states of the channel to the CSV file until it is closed.
func StreamBand(conf ExportConfig, stateChan <-chan BandState) error {
	if !conf.AsCSV {
		for range stateChan {
			// Drain the channel so that the producer never blocks.
		}
		return nil
	}
	var f *os.File
	var err error
	defer func() {
		if f != nil {
			f.WriteString("\n")
			f.Close()
		}
	}()
	for state := range stateChan {
		if err != nil {
			continue
		}
		if f == nil {
			if f, err = createEnergyFile(conf, len(state.Energies)); err != nil {
				continue
			}
		}
		record := make([]string, 0, len(state.Energies)+3)
		record = append(record, strconv.FormatUint(state.Step, 10), strconv.FormatFloat(state.Time, 'g', -1, 64), strconv.FormatFloat(state.MaxdYdt, 'e', 6, 64))
		for _, e := range state.Energies {
			record = append(record, strconv.FormatFloat(e, 'e', 12, 64))
		}
		_, err = f.WriteString("\n" + strings.Join(record, ","))
	}
	return err
}

// BandSummary is the JSON summary of a band.
type BandSummary struct {
	Name      string    `json:"name"`
	Steps     uint64    `json:"steps"`
	Time      float64   `json:"time"`
	MaxdYdt   float64   `json:"maxdYdt"`
	Energies  []float64 `json:"energies"`
	Distances []float64 `json:"distances"`
	Barrier   float64   `json:"barrier"`
	Saddle    int       `json:"saddleImage"`
}

// WriteSummary writes the JSON summary of the provided state, if enabled.
func WriteSummary(conf ExportConfig, state BandState) error {
	if !conf.Summary {
		return nil
	}
	if len(state.Energies) == 0 {
		return fmt.Errorf("cannot summarize a band without energies: %w", ErrInvalidArgument)
	}
	saddle := floats.MaxIdx(state.Energies)
	s := BandSummary{conf.Filename, state.Step, state.Time, state.MaxdYdt, state.Energies, state.Distances, state.Energies[saddle] - state.Energies[0], saddle}
	fc, err := os.Create(conf.path("summary", "json"))
	if err != nil {
		return err
	}
	defer fc.Close()
	marsh, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fc.Write(marsh)
	return err
}
