package version

// Version is overridable at build time:
//
//	go build -ldflags "-X github.com/renqii/watchnest/internal/version.Version=v1.2.0"
var Version = "dev"
