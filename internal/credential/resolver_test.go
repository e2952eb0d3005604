package credential

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
)

type fixture struct {
	project string
	workdir string
	shared  string
	home    string
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	f := &fixture{
		project: filepath.Join(root, "project"),
		workdir: filepath.Join(root, "work"),
		shared:  filepath.Join(root, "shared", "youtube_cookies.txt"),
		home:    filepath.Join(root, "home"),
	}
	for _, dir := range []string{f.project, f.workdir, f.home, filepath.Dir(f.shared)} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	return f
}

func (f *fixture) resolver(browsers ...string) *Resolver {
	return &Resolver{
		envVar:         "TEST_YOUTUBE_COOKIES_PATH",
		projectDir:     f.project,
		cookieFileName: "youtube.com_cookies.txt",
		sharedPath:     f.shared,
		browsers:       browsers,
		requireProfile: true,
		homeDir:        f.home,
		getwd:          func() (string, error) { return f.workdir, nil },
		logger:         zap.NewNop(),
	}
}

func writeCookie(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("# Netscape HTTP Cookie File\n"), 0600))
	return path
}

func TestResolveNoneAvailable(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.resolver("chrome", "firefox").Resolve())
}

func TestResolvePrecedence(t *testing.T) {
	f := newFixture(t)
	r := f.resolver("firefox")

	require.NoError(t, os.MkdirAll(filepath.Join(f.home, ".mozilla", "firefox"), 0755))
	auth := r.Resolve()
	require.NotNil(t, auth)
	assert.Equal(t, models.AuthBrowser, auth.Kind)
	assert.Equal(t, "firefox", auth.Browser)

	shared := writeCookie(t, f.shared)
	auth = r.Resolve()
	require.NotNil(t, auth)
	assert.Equal(t, SourceShared, auth.Source)
	assert.Equal(t, shared, auth.CookieFile)

	wd := writeCookie(t, filepath.Join(f.workdir, "cookies", "youtube.com_cookies.txt"))
	auth = r.Resolve()
	assert.Equal(t, SourceWorkDir, auth.Source)
	assert.Equal(t, wd, auth.CookieFile)

	project := writeCookie(t, filepath.Join(f.project, "cookies", "youtube.com_cookies.txt"))
	auth = r.Resolve()
	assert.Equal(t, SourceProject, auth.Source)
	assert.Equal(t, project, auth.CookieFile)

	env := writeCookie(t, filepath.Join(t.TempDir(), "env_cookies.txt"))
	t.Setenv("TEST_YOUTUBE_COOKIES_PATH", env)
	auth = r.Resolve()
	assert.Equal(t, SourceEnv, auth.Source)
	assert.Equal(t, env, auth.CookieFile)
}

func TestResolveSkipsMissingEnvPath(t *testing.T) {
	f := newFixture(t)
	t.Setenv("TEST_YOUTUBE_COOKIES_PATH", filepath.Join(f.project, "nope.txt"))
	shared := writeCookie(t, f.shared)

	auth := f.resolver().Resolve()
	require.NotNil(t, auth)
	assert.Equal(t, shared, auth.CookieFile)
}

func TestResolveSkipsDirectoryCandidate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.shared, 0755))
	assert.Nil(t, f.resolver().Resolve())
}

func TestResolveOverride(t *testing.T) {
	f := newFixture(t)
	writeCookie(t, f.shared)
	r := f.resolver()

	override := writeCookie(t, filepath.Join(t.TempDir(), "mine.txt"))
	auth := r.ResolveWithOverride(&models.AuthMaterial{Kind: models.AuthCookieFile, CookieFile: override})
	require.NotNil(t, auth)
	assert.Equal(t, SourceOverride, auth.Source)
	assert.Equal(t, override, auth.CookieFile)

	auth = r.ResolveWithOverride(&models.AuthMaterial{Kind: models.AuthBrowser, Browser: "edge"})
	assert.Equal(t, "edge", auth.Browser)

	auth = r.ResolveWithOverride(&models.AuthMaterial{Kind: models.AuthCookieFile, CookieFile: "/does/not/exist"})
	assert.Equal(t, SourceShared, auth.Source)
}

func TestResolveBrowserWithoutProfileProbe(t *testing.T) {
	f := newFixture(t)
	r := f.resolver("chrome", "firefox")
	r.requireProfile = false

	auth := r.Resolve()
	require.NotNil(t, auth)
	assert.Equal(t, "chrome", auth.Browser)
}
