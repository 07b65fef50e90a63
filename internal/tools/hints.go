package tools

// InstallHints suggests how to install scss-lint on goos.
func InstallHints(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"Install scss-lint with RubyGems: gem install scss_lint",
			"If Ruby comes from Homebrew, ensure $(brew --prefix)/lib/ruby/gems/*/bin is on PATH",
		}
	case "linux":
		return []string{
			"Install Ruby with your distro package manager, e.g. sudo apt install ruby",
			"then install scss-lint: gem install --user-install scss_lint",
		}
	case "windows":
		return []string{
			"Install Ruby via winget: winget install RubyInstallerTeam.Ruby.3.2",
			"then install scss-lint: gem install scss_lint",
		}
	default:
		return []string{"Install scss-lint with RubyGems: gem install scss_lint"}
	}
}
