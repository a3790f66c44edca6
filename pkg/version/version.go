// Package version reports the build identity of the executor binary: the app
// name plus the git commit it was built from.
package version

import "runtime/debug"

// AppName is the service name reported in version strings and /health.
const AppName = "executor"

// commit can be injected with
// -ldflags "-X .../pkg/version.commit=<sha>" for builds without a .git
// directory. When empty the commit is read from the binary's build info.
var commit string

// GitCommit is the short commit hash the binary was built from, or "dev" when
// neither an ldflags override nor VCS build info is available (go test,
// tarball builds).
var GitCommit = resolveCommit()

func resolveCommit() string {
	if commit != "" {
		return shortRev(commit)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shortRev(s.Value)
			}
		}
	}
	return "dev"
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// Full returns "executor/<commit>", suitable for startup logs and user-agent
// strings.
func Full() string {
	return AppName + "/" + GitCommit
}
