package version

// Version is the current application version. It is a var so release builds
// can set it:
//
//	go build -ldflags "-X github.com/vanderheijden86/colpanel/pkg/version.Version=v1.2.3"
var Version = "v0.1.0-dev"
