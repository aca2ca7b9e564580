package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/racelab/lapsmith/log"
	"github.com/racelab/lapsmith/pkg/model"
	"github.com/racelab/lapsmith/pkg/utils/cache"
	"github.com/racelab/lapsmith/pkg/utils/cache/loadercache"
)

var (
	eventPath   = jp.MustParseString("$.event")
	resultsPath = jp.MustParseString("$.results[*]")
	lapsPath    = jp.MustParseString("$.laps[*]")
	weatherPath = jp.MustParseString("$.weather[*]")
	samplesPath = jp.MustParseString("$.samples[*]")
)

type (
	sessionKey struct {
		year  int
		round int
		st    model.SessionType
	}

	// HTTPLoader loads sessions from a racing-data service that exposes the
	// session archive as JSON documents.
	HTTPLoader struct {
		baseURL  string
		client   *http.Client
		sessions cache.Cache[sessionKey, sessionDoc]
		l        *log.Logger
	}

	HTTPLoaderOption func(h *HTTPLoader)

	// sessionDoc is the parsed session payload (event, results, laps,
	// weather); telemetry is fetched per driver on demand.
	sessionDoc struct {
		meta    model.SessionMeta
		results []model.RawResult
		laps    []model.RawLap
		weather []model.RawWeather
	}

	httpSession struct {
		loader *HTTPLoader
		key    sessionKey
		doc    *sessionDoc
	}
)

func WithHTTPClient(client *http.Client) HTTPLoaderOption {
	return func(h *HTTPLoader) {
		h.client = client
	}
}

func WithLogger(l *log.Logger) HTTPLoaderOption {
	return func(h *HTTPLoader) {
		h.l = l
	}
}

func NewHTTPLoader(baseURL string, opts ...HTTPLoaderOption) *HTTPLoader {
	h := &HTTPLoader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
		l:       log.Default().Named("provider"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sessions = loadercache.New(
		loadercache.WithExpiration[sessionKey, sessionDoc](time.Hour),
		loadercache.WithLogger[sessionKey, sessionDoc](h.l),
		loadercache.WithLoader(func(key sessionKey) (*sessionDoc, error) {
			return h.fetchSession(context.Background(), key)
		}),
	)
	return h
}

func (h *HTTPLoader) LoadSession(
	ctx context.Context, year, round int, st model.SessionType,
) (Session, error) {
	key := sessionKey{year: year, round: round, st: st}
	doc, err := h.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &httpSession{loader: h, key: key, doc: doc}, nil
}

func (h *HTTPLoader) ClearCache(ctx context.Context) {
	h.sessions.InvalidateAll(ctx)
}

func (h *HTTPLoader) fetchSession(
	ctx context.Context, key sessionKey,
) (*sessionDoc, error) {
	url := fmt.Sprintf("%s/api/%d/%d/%s", h.baseURL, key.year, key.round, key.st)
	body, err := h.get(ctx, url, ErrSessionNotAvailable)
	if err != nil {
		return nil, err
	}
	root, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing session payload: %w", err)
	}
	doc := &sessionDoc{}
	if ev := eventPath.First(root); ev != nil {
		doc.meta = model.SessionMeta{
			Year:     getInt(ev, "Year"),
			Round:    getInt(ev, "Round"),
			Location: getString(ev, "Location"),
			Country:  getString(ev, "Country"),
		}
	}
	for _, n := range resultsPath.Get(root) {
		doc.results = append(doc.results, model.RawResult{
			Abbreviation:       getString(n, "Abbreviation"),
			TeamID:             getString(n, "TeamId"),
			CountryCode:        getString(n, "CountryCode"),
			ClassifiedPosition: getString(n, "ClassifiedPosition"),
			GridPosition:       getFloat(n, "GridPosition"),
			Time:               getString(n, "Time"),
			Points:             getFloat(n, "Points"),
		})
	}
	for _, n := range lapsPath.Get(root) {
		doc.laps = append(doc.laps, model.RawLap{
			LapNumber:    getInt(n, "LapNumber"),
			Driver:       getString(n, "Driver"),
			LapTime:      getString(n, "LapTime"),
			Compound:     getString(n, "Compound"),
			TyreLife:     getFloat(n, "TyreLife"),
			Stint:        getFloat(n, "Stint"),
			PitInTime:    getString(n, "PitInTime"),
			PitOutTime:   getString(n, "PitOutTime"),
			FreshTyre:    getBool(n, "FreshTyre"),
			Team:         getString(n, "Team"),
			TrackStatus:  getString(n, "TrackStatus"),
			Position:     getOptFloat(n, "Position"),
			Sector1Time:  getString(n, "Sector1Time"),
			Sector2Time:  getString(n, "Sector2Time"),
			Sector3Time:  getString(n, "Sector3Time"),
			SpeedI1:      getOptFloat(n, "SpeedI1"),
			SpeedI2:      getOptFloat(n, "SpeedI2"),
			SpeedFL:      getOptFloat(n, "SpeedFL"),
			SpeedST:      getOptFloat(n, "SpeedST"),
			LapStartTime: getString(n, "LapStartTime"),
		})
	}
	for _, n := range weatherPath.Get(root) {
		doc.weather = append(doc.weather, model.RawWeather{
			Time:          getString(n, "Time"),
			AirTemp:       getFloat(n, "AirTemp"),
			Humidity:      getFloat(n, "Humidity"),
			Pressure:      getFloat(n, "Pressure"),
			Rainfall:      getBool(n, "Rainfall"),
			TrackTemp:     getFloat(n, "TrackTemp"),
			WindDirection: getFloat(n, "WindDirection"),
			WindSpeed:     getFloat(n, "WindSpeed"),
		})
	}
	return doc, nil
}

func (h *HTTPLoader) fetchTelemetry(
	ctx context.Context, key sessionKey, driver string,
) ([]model.RawTelemetry, error) {
	url := fmt.Sprintf("%s/api/%d/%d/%s/car/%s",
		h.baseURL, key.year, key.round, key.st, driver)
	body, err := h.get(ctx, url, ErrDriverTelemetryMissing)
	if err != nil {
		return nil, err
	}
	root, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing telemetry payload: %w", err)
	}
	samples := make([]model.RawTelemetry, 0)
	for _, n := range samplesPath.Get(root) {
		samples = append(samples, model.RawTelemetry{
			RPM:         getFloat(n, "RPM"),
			Speed:       getFloat(n, "Speed"),
			Gear:        getInt(n, "nGear"),
			Throttle:    getFloat(n, "Throttle"),
			Brake:       getBool(n, "Brake"),
			DRS:         getInt(n, "DRS"),
			SessionTime: getString(n, "SessionTime"),
		})
	}
	return samples, nil
}

func (h *HTTPLoader) get(
	ctx context.Context, url string, notFound error,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *httpSession) Meta() model.SessionMeta { return s.doc.meta }

func (s *httpSession) Drivers(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	drivers := make([]string, 0)
	for i := range s.doc.laps {
		if d := s.doc.laps[i].Driver; !seen[d] {
			seen[d] = true
			drivers = append(drivers, d)
		}
	}
	return drivers, nil
}

func (s *httpSession) Results(_ context.Context) ([]model.RawResult, error) {
	return s.doc.results, nil
}

func (s *httpSession) Laps(_ context.Context) ([]model.RawLap, error) {
	return s.doc.laps, nil
}

func (s *httpSession) Weather(_ context.Context) ([]model.RawWeather, error) {
	return s.doc.weather, nil
}

func (s *httpSession) CarTelemetry(
	ctx context.Context, driver string,
) ([]model.RawTelemetry, error) {
	return s.loader.fetchTelemetry(ctx, s.key, driver)
}

// payload field helpers: the provider emits JSON numbers for some columns as
// integers, so both representations are accepted

func getString(node any, key string) string {
	m, ok := node.(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(node any, key string) float64 {
	m, ok := node.(map[string]any)
	if !ok {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func getOptFloat(node any, key string) *float64 {
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	switch v := m[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func getInt(node any, key string) int {
	return int(getFloat(node, key))
}

func getBool(node any, key string) bool {
	m, ok := node.(map[string]any)
	if !ok {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case float64:
		return v > 0
	case int64:
		return v > 0
	}
	return false
}
