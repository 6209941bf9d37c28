package auth

import (
	"os"
	"path/filepath"
	"testing"
)

// redirectSecrets points the Docker secrets path into a temp dir so test
// outcomes never depend on the host's /run/secrets mount.
func redirectSecrets(t *testing.T) string {
	t.Helper()
	orig := DockerSecretCookiePath
	path := filepath.Join(t.TempDir(), "cookies_txt")
	DockerSecretCookiePath = path
	t.Cleanup(func() { DockerSecretCookiePath = orig })
	return path
}

func TestChainWithoutCookieJar(t *testing.T) {
	redirectSecrets(t)
	chain := Chain(filepath.Join(t.TempDir(), "missing.txt"))

	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].Mode != ModeAnonymous {
		t.Errorf("first context = %v, want anonymous", chain[0].Mode)
	}
	if chain[1].Mode != ModeMobile {
		t.Errorf("second context = %v, want mobile", chain[1].Mode)
	}
}

func TestChainWithCookieJar(t *testing.T) {
	redirectSecrets(t)
	jar := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(jar, []byte("# Netscape HTTP Cookie File\n"), 0600); err != nil {
		t.Fatal(err)
	}

	chain := Chain(jar)

	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}
	want := []Mode{ModeAnonymous, ModeCookies, ModeMobile}
	for i, mode := range want {
		if chain[i].Mode != mode {
			t.Errorf("chain[%d] = %v, want %v", i, chain[i].Mode, mode)
		}
	}
	if chain[1].CookieFile != jar {
		t.Errorf("cookie context file = %q, want %q", chain[1].CookieFile, jar)
	}
}

func TestCookiePathIgnoresDirectories(t *testing.T) {
	redirectSecrets(t)
	dir := t.TempDir()
	if got := CookiePath(dir); got != "" {
		t.Errorf("CookiePath(directory) = %q, want empty", got)
	}
}

func TestCookiePathPrefersDockerSecret(t *testing.T) {
	secret := redirectSecrets(t)
	if err := os.WriteFile(secret, []byte("# Netscape HTTP Cookie File\n"), 0600); err != nil {
		t.Fatal(err)
	}

	configured := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(configured, []byte("# Netscape HTTP Cookie File\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if got := CookiePath(configured); got != secret {
		t.Errorf("CookiePath() = %q, want docker secret %q", got, secret)
	}

	chain := Chain("")
	if len(chain) != 3 || chain[1].Mode != ModeCookies || chain[1].CookieFile != secret {
		t.Errorf("chain = %+v, want secret-backed cookie context", chain)
	}
}
