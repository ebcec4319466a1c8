package shared

import "testing"

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tmp/shelfsync.db" {
			t.Errorf("expected database path ./tmp/shelfsync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Remote.BaseURL != "https://api.spotify.com/v1" {
			t.Errorf("expected remote base URL https://api.spotify.com/v1, got %s", config.Remote.BaseURL)
		}

		if config.Remote.ClientID != "your_client_id" {
			t.Errorf("expected remote client_id your_client_id, got %s", config.Remote.ClientID)
		}

		if config.Library.MasterDir != "~/Music/Library" {
			t.Errorf("expected library master_dir ~/Music/Library, got %s", config.Library.MasterDir)
		}
	})
}
