// Package geolookup builds an in-memory place index from Geonames reference
// data and answers free-text substring lookups against it.
//
// Loading happens in two passes. Pass 1 decodes every source concurrently and
// registers country, admin1 and admin2 names in a shared Registry. Once every
// source has finished (an explicit barrier) the registry is sealed and Pass 2
// resolves each record's ancestor chain into an IndexEntry.
//
//	idx, err := geolookup.Build(ctx, geolookup.WithDataDir("/var/lib/geolookup"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range idx.Lookup("springfield il", 10) {
//	    fmt.Println(r.Path)
//	}
package geolookup

import (
	"archive/zip"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SourceID identifies a data source category.
type SourceID string

const (
	SourceCountries SourceID = "geonamesCountryInfo"
	SourceAdmin1    SourceID = "geonamesAdmin1Codes"
	SourceAdmin2    SourceID = "geonamesAdmin2Codes"
	SourceCities    SourceID = "geonamesCities1000"
)

// ErrUnknownSource is returned for a DataSource whose ID has no decoder.
var ErrUnknownSource = errors.New("unknown data source")

// DataSource defines one category of input data.
type DataSource struct {
	URL  string   // Download URL; empty means the file must already exist
	Path string   // File name, resolved against the data directory
	ID   SourceID // Selects the decoder
}

// DefaultSources are the Geonames dumps, in index order.
var DefaultSources = []DataSource{
	{URL: "https://download.geonames.org/export/dump/countryInfo.txt", Path: "countryInfo.txt", ID: SourceCountries},
	{URL: "https://download.geonames.org/export/dump/admin1CodesASCII.txt", Path: "admin1CodesASCII.txt", ID: SourceAdmin1},
	{URL: "https://download.geonames.org/export/dump/admin2Codes.txt", Path: "admin2Codes.txt", ID: SourceAdmin2},
	{URL: "https://download.geonames.org/export/dump/cities1000.zip", Path: "cities1000.zip", ID: SourceCities},
}

func decoderFor(id SourceID) (Decoder, error) {
	switch id {
	case SourceCountries:
		return DecodeCountry, nil
	case SourceAdmin1:
		return DecodeAdmin1, nil
	case SourceAdmin2:
		return DecodeAdmin2, nil
	case SourceCities:
		return DecodeCity, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
}

// Config contains the options for loading data.
type Config struct {
	DataDir    string       // Directory holding the raw data files (default: "./geolookup-data")
	Sources    []DataSource // Sources in index order (default: DefaultSources)
	Download   bool         // Fetch missing files from their URL (default: true)
	HTTPClient *http.Client // Client used for downloads
	Logger     *slog.Logger // Defaults to slog.Default()
}

// Option is a functional option for configuring a build.
type Option func(*Config)

// WithDataDir sets the directory for raw data files.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithSources replaces the default source list.
func WithSources(sources ...DataSource) Option {
	return func(c *Config) {
		c.Sources = sources
	}
}

// WithDownload enables or disables fetching missing files.
func WithDownload(enabled bool) Option {
	return func(c *Config) {
		c.Download = enabled
	}
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the logger for load progress.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// httpClient is a shared HTTP client with reasonable timeouts.
// The cities dump is tens of megabytes, hence the generous limit.
var httpClient = &http.Client{
	Timeout: 5 * time.Minute,
}

func newConfig(opts []Option) *Config {
	cfg := &Config{
		DataDir:    "./geolookup-data",
		Sources:    DefaultSources,
		Download:   true,
		HTTPClient: httpClient,
		Logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func (c *Config) localPath(src DataSource) string {
	return filepath.Join(c.DataDir, filepath.Base(src.Path))
}

// Build loads every configured source and returns the finished index.
// Any unavailable source aborts the build; malformed lines are skipped.
func Build(ctx context.Context, opts ...Option) (*Index, error) {
	cfg := newConfig(opts)
	start := time.Now()

	if cfg.Download {
		if err := downloadDataSets(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to download data sets: %w", err)
		}
	}

	reg := NewRegistry()
	batches, err := registerAll(ctx, cfg, reg)
	if err != nil {
		return nil, err
	}

	idx, err := BuildIndex(batches, reg)
	if err != nil {
		return nil, err
	}

	stats := reg.Stats()
	cfg.Logger.Info("index built",
		"entries", idx.Len(),
		"countries", stats.Countries,
		"admin1", stats.Admin1,
		"admin2", stats.Admin2,
		"unnamed_nodes", stats.Unnamed,
		"duration", time.Since(start),
	)
	return idx, nil
}

// registerAll runs Pass 1: one task per source decodes its file and registers
// definitional records. It returns only after every task has finished, then
// seals the registry. The returned batches follow cfg.Sources order.
func registerAll(ctx context.Context, cfg *Config, reg *Registry) ([][]Record, error) {
	batches := make([][]Record, len(cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range cfg.Sources {
		g.Go(func() error {
			recs, err := loadSource(gctx, cfg, src, reg)
			if err != nil {
				return fmt.Errorf("loading %s: %w", src.ID, err)
			}
			batches[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg.Seal()
	return batches, nil
}

// loadSource decodes one source, registering each named record as it goes.
func loadSource(ctx context.Context, cfg *Config, src DataSource, reg *Registry) ([]Record, error) {
	decode, err := decoderFor(src.ID)
	if err != nil {
		return nil, err
	}

	var (
		records []Record
		skipped int
		unnamed int
	)
	oversized, err := readLines(ctx, cfg.localPath(src), func(line string) {
		rec, ok := decode(line)
		if !ok {
			skipped++
			return
		}
		if rec.DisplayName() == "" {
			unnamed++
			return
		}
		reg.Register(rec)
		records = append(records, rec)
	})
	if err != nil {
		return nil, err
	}
	skipped += oversized

	cfg.Logger.Debug("source loaded",
		"source", src.ID,
		"records", len(records),
		"skipped", skipped,
		"oversized", oversized,
		"unnamed", unnamed,
	)
	return records, nil
}

// ctxCheckInterval is how many lines are read between context checks.
const ctxCheckInterval = 4096

// maxLineSize bounds a single line; the cities dump carries long
// alternate-name columns. Longer lines are dropped.
const maxLineSize = 1 << 20

// readLines calls fn for every line of path and returns how many lines were
// dropped for exceeding maxLineSize. Zip archives are read entry by entry;
// anything else is read as plain text.
func readLines(ctx context.Context, path string, fn func(string)) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		rz, err := zip.OpenReader(path)
		if err != nil {
			return 0, fmt.Errorf("opening zip file: %w", err)
		}
		defer rz.Close()

		// Entries are only streamed into memory, never extracted to disk.
		dropped := 0
		for _, uF := range rz.File {
			n, err := processZipEntry(ctx, uF, fn)
			dropped += n
			if err != nil {
				return dropped, err
			}
		}
		return dropped, nil
	}

	fi, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer fi.Close()
	return scanLines(ctx, fi, fn)
}

// processZipEntry reads a single file entry from a zip archive.
func processZipEntry(ctx context.Context, uF *zip.File, fn func(string)) (int, error) {
	fi, err := uF.Open()
	if err != nil {
		return 0, fmt.Errorf("opening file in zip: %w", err)
	}
	defer fi.Close()
	dropped, err := scanLines(ctx, fi, fn)
	if err != nil {
		return dropped, fmt.Errorf("reading %s: %w", uF.Name, err)
	}
	return dropped, nil
}

// scanLines calls fn for each line of r without its line ending. Lines
// longer than maxLineSize are consumed but not passed to fn; their count is
// returned.
func scanLines(ctx context.Context, r io.Reader, fn func(string)) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		line    []byte
		tooLong bool
		dropped int
		n       int
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return dropped, nil
		}
		if err != nil {
			return dropped, err
		}

		if !tooLong {
			if len(line)+len(chunk) > maxLineSize {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if isPrefix {
			continue
		}

		if tooLong {
			dropped++
		} else {
			fn(string(line))
		}
		line = line[:0]
		tooLong = false

		if n++; n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return dropped, err
			}
		}
	}
}

// downloadMu serializes downloads so concurrent builds sharing a data
// directory never write the same file twice.
var downloadMu sync.Mutex

// Download fetches every configured source that is missing from the data
// directory.
func Download(ctx context.Context, opts ...Option) error {
	cfg := newConfig(opts)
	return downloadDataSets(ctx, cfg)
}

func downloadDataSets(ctx context.Context, cfg *Config) error {
	downloadMu.Lock()
	defer downloadMu.Unlock()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	for _, src := range cfg.Sources {
		localPath := cfg.localPath(src)
		if _, err := os.Stat(localPath); err == nil {
			continue
		}
		if src.URL == "" {
			// Left for loadSource to report as missing.
			continue
		}
		cfg.Logger.Info("downloading source", "source", src.ID, "url", src.URL)
		if err := downloadFile(ctx, cfg.HTTPClient, src.URL, localPath); err != nil {
			return fmt.Errorf("downloading %s: %w", src.ID, err)
		}
	}
	return nil
}

func downloadFile(ctx context.Context, client *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	// Remove the partial file on any failure.
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(path)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	success = true
	return nil
}
