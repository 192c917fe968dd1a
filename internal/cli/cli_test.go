package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
vector_store:
  type: memory
  store_path: %s
chat_log:
  type: jsonl
  path: %s
logging:
  level: error
  file: %s
`, filepath.Join(dir, "store"), filepath.Join(dir, "chat_logs.jsonl"), filepath.Join(dir, "travelchat.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := Execute(context.Background())
	return out.String(), err
}

func TestIngestCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir)
	news := filepath.Join(dir, "noticia.txt")
	require.NoError(t, os.WriteFile(news, []byte("Las fiestas de la calle San Sebastián llenan el Viejo San Juan. Hay música y comida."), 0o644))

	out, err := run(t, "--config", cfgFile, "ingest", "news_articles", news)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 documents (1 chunks) into news_articles")
	assert.FileExists(t, filepath.Join(dir, "store", "news_articles.json"))
}

func TestIngestCommandRequiresFiles(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t, t.TempDir()), "ingest", "landmarks")
	assert.Error(t, err)
}

func TestLogsCommandEmpty(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t, t.TempDir()), "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "No chat log entries yet.")
}

func TestLogsCommandPrintsEntries(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir)
	line := `{"timestamp":"2025-02-03T10:30:00Z","user_input":"hola","model_reply":"Bienvenido"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_logs.jsonl"), []byte(line), 0o644))

	out, err := run(t, "--config", cfgFile, "logs")
	require.NoError(t, err)
	assert.Equal(t, line, out)
}

func TestAskRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := run(t, "--config", writeConfig(t, t.TempDir()), "ask", "What should I pack?")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")
}
