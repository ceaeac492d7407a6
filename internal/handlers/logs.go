package handlers

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"travelblog/internal/i18n"
	"travelblog/internal/models"
	"travelblog/internal/utils/helpers"
)

const (
	logTimeLayout    = "2006-01-02T15:04:05.000Z0700"
	backupTimeLayout = "2006-01-02T15-04-05.000"
	activeLogName    = "app.log"
)

// LogsHandler — просмотр JSON-логов zap из папки lumberjack (app.log и ротированные app-*.log[.gz]).
type LogsHandler struct {
	dir       string
	retention int
	now       func() time.Time
}

func NewLogsHandler(dir string, retention int) *LogsHandler {
	if retention <= 0 {
		retention = 7
	}
	return &LogsHandler{dir: dir, retention: retention, now: time.Now}
}

type logFile struct {
	path    string
	rotated time.Time // для app.log — текущее время
}

type logPage struct {
	Day        string            `json:"day"`
	Items      []json.RawMessage `json:"items"`
	NextCursor int               `json:"nextCursor"`
}

type logStats struct {
	Day   string                 `json:"day"`
	Hours map[int]map[string]int `json:"hours"`
}

// Days godoc
// @Summary      Дни, за которые есть логи
// @Tags         admin-logs
// @Produce      json
// @Success      200 {object} helpers.Response{data=[]string}
// @Security     ApiKeyAuth
// @Router       /api/admin/logs/days [get]
func (h *LogsHandler) Days(w http.ResponseWriter, r *http.Request) {
	files, err := h.files()
	if err != nil {
		helpers.Collection(w, []string{}, 0)
		return
	}

	oldest := h.now().AddDate(0, 0, -h.retention+1).Format(time.DateOnly)
	seen := map[string]bool{}
	for _, f := range files {
		first := firstLineTime(f.path)
		if first.IsZero() {
			continue
		}
		for d := first; !d.After(f.rotated); d = d.AddDate(0, 0, 1) {
			if day := d.Format(time.DateOnly); day >= oldest {
				seen[day] = true
			}
		}
		if day := f.rotated.Format(time.DateOnly); day >= oldest {
			seen[day] = true
		}
	}

	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	helpers.Collection(w, days, len(days))
}

// Entries godoc
// @Summary      Записи лога за день
// @Tags         admin-logs
// @Produce      json
// @Param        day    query string true  "Дата YYYY-MM-DD"
// @Param        level  query string false "Уровни через запятую: info,warn,error"
// @Param        hour   query int    false "Час 0-23"
// @Param        q      query string false "Подстрока"
// @Param        limit  query int    false "Лимит (200 по умолчанию, максимум 1000)"
// @Param        cursor query int    false "Сколько совпавших записей пропустить"
// @Success      200 {object} helpers.Response{data=logPage}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/admin/logs [get]
func (h *LogsHandler) Entries(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	day, err := parseDay(qs.Get("day"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	levels := upperSet(qs.Get("level"))
	hour := -1
	if v := qs.Get("hour"); v != "" {
		if hv, err := strconv.Atoi(v); err == nil && hv >= 0 && hv <= 23 {
			hour = hv
		}
	}
	var needle *regexp.Regexp
	if q := strings.TrimSpace(qs.Get("q")); q != "" {
		needle = regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	}
	limit := clampInt(qs.Get("limit"), 200, 1, 1000)
	cursor := clampInt(qs.Get("cursor"), 0, 0, 10_000_000)

	page := logPage{Day: day, Items: []json.RawMessage{}}
	skipped := 0
	h.eachLine(day, func(raw []byte, level string, at time.Time) bool {
		if len(levels) > 0 && !levels[level] {
			return true
		}
		if hour >= 0 && at.Hour() != hour {
			return true
		}
		if needle != nil && !needle.Match(raw) {
			return true
		}
		if skipped < cursor {
			skipped++
			return true
		}
		page.Items = append(page.Items, append(json.RawMessage{}, raw...))
		return len(page.Items) < limit
	})
	page.NextCursor = cursor + len(page.Items)
	helpers.JSON(w, http.StatusOK, page)
}

// Stats godoc
// @Summary      Количество записей по часам и уровням
// @Tags         admin-logs
// @Produce      json
// @Param        day query string true "Дата YYYY-MM-DD"
// @Success      200 {object} helpers.Response{data=logStats}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/admin/logs/stats [get]
func (h *LogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats := logStats{Day: day, Hours: make(map[int]map[string]int, 24)}
	for hr := 0; hr < 24; hr++ {
		stats.Hours[hr] = map[string]int{}
	}
	h.eachLine(day, func(_ []byte, level string, at time.Time) bool {
		stats.Hours[at.Hour()][level]++
		return true
	})
	helpers.JSON(w, http.StatusOK, stats)
}

func parseDay(s string) (string, error) {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", models.NewValidationError(i18n.MsgInvalidQuery, "day")
	}
	return s, nil
}

// files — app.log и резервные копии lumberjack, от старых к новым.
func (h *LogsHandler) files() ([]logFile, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, err
	}
	var out []logFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == activeLogName {
			out = append(out, logFile{path: filepath.Join(h.dir, name), rotated: h.now()})
			continue
		}
		stamp, ok := strings.CutPrefix(name, "app-")
		if !ok {
			continue
		}
		stamp = strings.TrimSuffix(strings.TrimSuffix(stamp, ".gz"), ".log")
		t, err := time.Parse(backupTimeLayout, stamp)
		if err != nil {
			continue
		}
		out = append(out, logFile{path: filepath.Join(h.dir, name), rotated: t.Local()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rotated.Before(out[j].rotated) })
	return out, nil
}

// eachLine перебирает записи за день. Файлы, ротированные до начала дня, пропускаются.
func (h *LogsHandler) eachLine(day string, fn func(raw []byte, level string, at time.Time) bool) {
	files, err := h.files()
	if err != nil {
		return
	}
	start, _ := time.ParseInLocation(time.DateOnly, day, time.Local)
	for _, f := range files {
		if f.rotated.Before(start) {
			continue
		}
		if !scanFile(f.path, func(raw []byte) bool {
			level, at, ok := parseEntry(raw)
			if !ok || at.Format(time.DateOnly) != day {
				return true
			}
			return fn(raw, level, at)
		}) {
			return
		}
	}
}

// scanFile возвращает false, если обход остановлен обработчиком.
func scanFile(path string, fn func([]byte) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return true
		}
		defer gz.Close()
		reader = gz
	}

	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if !fn(sc.Bytes()) {
			return false
		}
	}
	return true
}

func firstLineTime(path string) time.Time {
	var first time.Time
	scanFile(path, func(raw []byte) bool {
		_, at, ok := parseEntry(raw)
		if ok {
			first = at
		}
		return !ok
	})
	return first
}

func parseEntry(raw []byte) (string, time.Time, bool) {
	var e struct {
		Level string `json:"level"`
		Time  string `json:"time"`
	}
	if err := json.Unmarshal(raw, &e); err != nil || e.Time == "" {
		return "", time.Time{}, false
	}
	at, err := time.Parse(logTimeLayout, e.Time)
	if err != nil {
		return "", time.Time{}, false
	}
	return strings.ToUpper(e.Level), at, true
}

func upperSet(csv string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			m[strings.ToUpper(p)] = true
		}
	}
	return m
}

func clampInt(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}
