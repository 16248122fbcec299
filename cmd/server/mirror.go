package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"tokenrush.gg/internal/persistence/offsite"
)

// Offsite mirroring is configured by environment, not flags: the
// credentials do not belong in process listings.
type mirrorRuntime struct {
	enabled bool
	mirror  *offsite.Mirror
}

func buildMirrorRuntime(dataDir string, logger *log.Logger) (*mirrorRuntime, error) {
	if !envBool("RUSH_MIRROR", false) {
		return &mirrorRuntime{}, nil
	}

	endpoint := strings.TrimSpace(os.Getenv("RUSH_MIRROR_ENDPOINT"))
	bucket := strings.TrimSpace(os.Getenv("RUSH_MIRROR_BUCKET"))
	accessKeyID := strings.TrimSpace(os.Getenv("RUSH_MIRROR_ACCESS_KEY_ID"))
	secretAccessKey := strings.TrimSpace(os.Getenv("RUSH_MIRROR_SECRET_ACCESS_KEY"))
	prefix := strings.TrimSpace(os.Getenv("RUSH_MIRROR_PREFIX"))

	if endpoint == "" || bucket == "" || accessKeyID == "" || secretAccessKey == "" {
		return nil, fmt.Errorf("RUSH_MIRROR=true but RUSH_MIRROR_ENDPOINT/RUSH_MIRROR_BUCKET/RUSH_MIRROR_ACCESS_KEY_ID/RUSH_MIRROR_SECRET_ACCESS_KEY are not fully set")
	}

	client, err := offsite.NewClient(endpoint, bucket, accessKeyID, secretAccessKey)
	if err != nil {
		return nil, err
	}
	workers := envInt("RUSH_MIRROR_WORKERS", 2)
	return &mirrorRuntime{
		enabled: true,
		mirror:  offsite.NewMirror(client, dataDir, prefix, workers, logger),
	}, nil
}

func (r *mirrorRuntime) Enqueue(localPath string) {
	if r == nil || !r.enabled {
		return
	}
	r.mirror.Enqueue(localPath)
}

func (r *mirrorRuntime) Close() {
	if r == nil || r.mirror == nil {
		return
	}
	r.mirror.Close()
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
