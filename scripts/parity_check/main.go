package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const floatTolerance = 1e-6

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type side struct {
	base  string
	token string
}

type result struct {
	Target        target
	GoStatus      int
	LegacyStatus  int
	Diffs         []string
	Err           error
	GoLatency     time.Duration
	LegacyLatency time.Duration
}

func (r result) ok() bool {
	return r.Err == nil && r.GoStatus == r.LegacyStatus && len(r.Diffs) == 0
}

func main() {
	var (
		goSide      side
		legacySide  side
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goSide.base, "go-base", "http://localhost:8080/api/v1", "Go API base URL")
	flag.StringVar(&goSide.token, "go-token", os.Getenv("PARITY_GO_TOKEN"), "Bearer token for the Go API")
	flag.StringVar(&legacySide.base, "legacy-base", "http://localhost:8000/api/v1", "Legacy API base URL")
	flag.StringVar(&legacySide.token, "legacy-token", os.Getenv("PARITY_LEGACY_TOKEN"), "Bearer token for the legacy API")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "parity_check", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var breaking, optional int
	results := make([]result, 0, len(targets))
	for _, t := range targets {
		res := compare(client, goSide, legacySide, t)
		if !res.ok() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compare(client *http.Client, goSide, legacySide side, tgt target) result {
	res := result{Target: tgt}

	goStatus, goData, goLatency, err := fetchData(client, goSide, tgt)
	if err != nil {
		res.Err = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyData, legacyLatency, err := fetchData(client, legacySide, tgt)
	if err != nil {
		res.Err = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus, res.LegacyStatus = goStatus, legacyStatus
	res.GoLatency, res.LegacyLatency = goLatency, legacyLatency
	res.Diffs = diff("data", goData, legacyData)
	return res
}

// fetchData performs the request and returns the decoded "data" member of the envelope.
func fetchData(client *http.Client, s side, tgt target) (int, interface{}, time.Duration, error) {
	if client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(s.base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, latency, fmt.Errorf("read body: %w", err)
	}
	var envelope struct {
		Data interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return resp.StatusCode, nil, latency, fmt.Errorf("decode body: %w", err)
	}
	return resp.StatusCode, envelope.Data, latency, nil
}

// diff walks two decoded JSON values and lists every path where they disagree.
func diff(path string, a, b interface{}) []string {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			return []string{fmt.Sprintf("%s: type mismatch", path)}
		}
		keys := make(map[string]struct{}, len(av)+len(bv))
		for k := range av {
			keys[k] = struct{}{}
		}
		for k := range bv {
			keys[k] = struct{}{}
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)

		var out []string
		for _, k := range sorted {
			out = append(out, diff(path+"."+k, av[k], bv[k])...)
		}
		return out
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok {
			return []string{fmt.Sprintf("%s: type mismatch", path)}
		}
		if len(av) != len(bv) {
			return []string{fmt.Sprintf("%s: length %d != %d", path, len(av), len(bv))}
		}
		var out []string
		for i := range av {
			out = append(out, diff(fmt.Sprintf("%s[%d]", path, i), av[i], bv[i])...)
		}
		return out
	case float64:
		bv, ok := b.(float64)
		if !ok || math.Abs(av-bv) > floatTolerance {
			return []string{fmt.Sprintf("%s: %v != %v", path, a, b)}
		}
		return nil
	default:
		if a != b {
			return []string{fmt.Sprintf("%s: %v != %v", path, a, b)}
		}
		return nil
	}
}

func printReport(results []result) {
	fmt.Println("Parity Report")
	fmt.Println("=============")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case !res.ok():
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Go: %d (%s) | Legacy: %d (%s) | Critical: %t\n",
			res.GoStatus, res.GoLatency, res.LegacyStatus, res.LegacyLatency, res.Target.Critical)
		for _, d := range res.Diffs {
			fmt.Printf("  - %s\n", d)
		}
	}
}
