package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/dotlink-dev/dotlink/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/dotlink-dev/dotlink/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/dotlink-dev/dotlink/internal/version.Date={{.Date}}
)
