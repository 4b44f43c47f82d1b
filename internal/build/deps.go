package build

import "context"

func (s *Session) BuildSnappy(ctx context.Context) error {
	return s.Build(ctx, "snappy", Options{})
}

func (s *Session) BuildJSONC(ctx context.Context) error {
	return s.Build(ctx, "jsonc", Options{})
}

func (s *Session) BuildLibev(ctx context.Context) error {
	return s.Build(ctx, "libev", Options{})
}

// BuildCpuid regenerates libcpuid's build system before configuring it.
func (s *Session) BuildCpuid(ctx context.Context) error {
	return s.Build(ctx, "cpuid", Options{})
}

func (s *Session) BuildCommon(ctx context.Context, withQt bool) error {
	return s.Build(ctx, "common", Options{WithQt: withQt})
}

func (s *Session) BuildFastotvProtocol(ctx context.Context) error {
	return s.Build(ctx, "fastotv_protocol", Options{})
}

func (s *Session) BuildFastoplayer(ctx context.Context) error {
	return s.Build(ctx, "fastoplayer", Options{})
}

// UpdatePyfastogt reinstalls the pyfastogt Python package from git.
func (s *Session) UpdatePyfastogt(ctx context.Context) error {
	return s.Build(ctx, "pyfastogt", Options{})
}

func (s *Session) BuildCMake(ctx context.Context, version string) error {
	return s.Build(ctx, "cmake", Options{Version: version})
}

func (s *Session) BuildMeson(ctx context.Context, version string) error {
	return s.Build(ctx, "meson", Options{Version: version})
}

// BuildOpenSSL builds static libraries unless shared is set.
func (s *Session) BuildOpenSSL(ctx context.Context, version string, shared bool) error {
	return s.Build(ctx, "openssl", Options{Version: version, Shared: shared})
}
