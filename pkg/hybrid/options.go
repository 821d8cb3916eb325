package hybrid

import "github.com/keshon/hybridkit/pkg/appcmd"

// Option customizes the derived structured side of a hybrid command or
// group. The prefix side is configured on the inner definition itself.
type Option func(*settings)

type settings struct {
	nsfw                     bool
	dmPermission             *bool
	defaultMemberPermissions *int64
	appChecks                []appcmd.Check
	interactionCheck         appcmd.Check
	fallback                 string
}

func applySettings(opts []Option) *settings {
	s := &settings{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithNSFW marks the structured command as age-restricted.
func WithNSFW() Option {
	return func(s *settings) { s.nsfw = true }
}

// WithDMPermission sets whether the structured command is available in DMs.
func WithDMPermission(allowed bool) Option {
	return func(s *settings) { s.dmPermission = &allowed }
}

// WithDefaultMemberPermissions sets the permission bits a member needs for
// the structured command to be visible to them.
func WithDefaultMemberPermissions(perms int64) Option {
	return func(s *settings) { s.defaultMemberPermissions = &perms }
}

// WithAppChecks adds checks that run only on the structured path, after the
// binding gates and before the prefix-side checks.
func WithAppChecks(checks ...appcmd.Check) Option {
	return func(s *settings) { s.appChecks = append(s.appChecks, checks...) }
}

// WithInteractionCheck gates every structured invocation routed through a
// group. Ignored on commands.
func WithInteractionCheck(check appcmd.Check) Option {
	return func(s *settings) { s.interactionCheck = check }
}

// WithFallback exposes a group's own callback as the named structured
// subcommand. Ignored on commands.
func WithFallback(name string) Option {
	return func(s *settings) { s.fallback = name }
}
