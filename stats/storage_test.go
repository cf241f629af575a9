package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "stats-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("RecordGeneration", func(t *testing.T) {
		storage.RecordGeneration(Record{Retries: 2, ProcessingMS: 1500, CostUSD: 0.002})
		storage.RecordGeneration(Record{Failed: true, ProcessingMS: 300})
		stats := storage.GetCurrentStats()

		if stats.Generations != 2 {
			t.Errorf("Expected 2 generations, got %d", stats.Generations)
		}
		if stats.Failures != 1 {
			t.Errorf("Expected 1 failure, got %d", stats.Failures)
		}
		if stats.ProviderRetries != 2 {
			t.Errorf("Expected 2 retries, got %d", stats.ProviderRetries)
		}
		if stats.TotalProcessingMS != 1800 {
			t.Errorf("Expected 1800ms total, got %d", stats.TotalProcessingMS)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		storage.requestWrite()
		time.Sleep(100 * time.Millisecond) // Give time for the write to complete

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}

		stats := storage2.GetCurrentStats()
		if stats.Generations != 2 {
			t.Errorf("Expected 2 generations after reload, got %d", stats.Generations)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().AddDate(0, -2, 0).Format("2006-01")
		storage.stats[oldMonth] = &MonthlyStats{
			Generations: 100,
			LastUpdated: time.Now().AddDate(0, -2, 0),
		}

		storage.Cleanup()

		if _, exists := storage.stats[oldMonth]; exists {
			t.Error("Old stats should have been cleaned up")
		}
	})

	t.Run("FileSize", func(t *testing.T) {
		storage.requestWrite()
		time.Sleep(100 * time.Millisecond)

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.RecordGeneration(Record{ProcessingMS: 1})
					storage.GetCurrentStats()
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		stats := storage.GetCurrentStats()
		if stats.Generations < 1000 {
			t.Errorf("Expected at least 1000 generations, got %d", stats.Generations)
		}
	})
}
