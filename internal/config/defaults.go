package config

import "git.home.luguber.info/inful/pagepublisher/internal/content"

const (
	defaultStorePath    = "./pagepublisher.db"
	defaultScanPageSize = 100
	defaultBlobDir      = "./public"
	defaultSubject      = "search.index"
	defaultStream       = "SEARCH_INDEX"
	defaultWorkers      = 4
	defaultHTTPAddr     = ":8080"
	defaultMetricsPath  = "/metrics"
)

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.Store.ScanPageSize <= 0 {
		cfg.Store.ScanPageSize = defaultScanPageSize
	}
	if cfg.Store.ConfigDocument == "" {
		cfg.Store.ConfigDocument = content.DefaultConfigID
	}
	if cfg.Blob.BaseDir == "" {
		cfg.Blob.BaseDir = defaultBlobDir
	}
	if cfg.Search.Subject == "" {
		cfg.Search.Subject = defaultSubject
	}
	if cfg.Search.Stream == "" {
		cfg.Search.Stream = defaultStream
	}
	if cfg.Publish.Workers <= 0 {
		cfg.Publish.Workers = defaultWorkers
	}
	if cfg.Publish.QueueSchedule != "" && cfg.Publish.QueueTarget == "" && len(cfg.Targets) > 0 {
		cfg.Publish.QueueTarget = cfg.Targets[0].Name
	}
	for i := range cfg.Feeds {
		cfg.Feeds[i].Kind = NormalizeFeedKind(string(cfg.Feeds[i].Kind))
	}
	if cfg.Daemon.HTTP.Addr == "" {
		cfg.Daemon.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = defaultMetricsPath
	}
	cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
}
