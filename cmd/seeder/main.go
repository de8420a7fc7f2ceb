// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Seeder loads a first aid chunk corpus into a knowledge base, embedding
// each chunk as it goes. The corpus is a JSON array of chunk records; when
// no file is given a small built-in sample corpus is loaded instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/firstaid/ai"
	"github.com/poiesic/firstaid/ai/openai"
	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/storage"
	"github.com/poiesic/firstaid/storage/badger"
)

var (
	dbPath         = flag.String("db", "./firstaid_db", "Path to BadgerDB database directory")
	corpusFileName = flag.String("file", "", "Path to JSON chunk corpus (uses built-in sample when empty)")
	host           = flag.String("host", "http://localhost:11434/v1", "Embedding service host URL")
	embeddingModel = flag.String("embedding-model", "biobert-embed", "Embedding model name")
	batchSize      = flag.Int("batch", 25, "Number of chunks embedded per request")
)

// chunkRecord is the JSON shape of one corpus entry.
type chunkRecord struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Source     string `json:"source"`
	ScenarioID string `json:"scenario_id"`
	Text       string `json:"text"`
}

// sampleCorpus is a minimal starter knowledge base, enough to exercise the
// pipeline end to end without a scraped corpus.
var sampleCorpus = []chunkRecord{
	{
		Title: "Severe Bleeding", Category: "bleeding", Severity: "critical",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_bleeding_1",
		Text: "Apply firm, direct pressure to the wound with a clean cloth or sterile dressing. Keep pressing without lifting the cloth to check the wound. If blood soaks through, add more layers on top. Raise the injured limb above heart level if possible and call emergency services for bleeding that does not stop within 10 minutes.",
	},
	{
		Title: "Adult Choking", Category: "choking", Severity: "critical",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_choking_1",
		Text: "Ask the person if they are choking. If they can cough, encourage them to keep coughing. If they cannot breathe, give up to five firm back blows between the shoulder blades with the heel of your hand, then up to five abdominal thrusts. Alternate until the object comes out or the person becomes unresponsive.",
	},
	{
		Title: "Thermal Burns", Category: "burns", Severity: "moderate",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_burn_1",
		Text: "Cool the burn under cool running water for at least 20 minutes. Remove jewellery and loose clothing near the burn before swelling starts. Cover the burn loosely with cling film or a clean non-fluffy cloth. Do not apply ice, butter, or creams, and do not burst blisters.",
	},
	{
		Title: "Suspected Fracture", Category: "fractures", Severity: "serious",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_fracture_1",
		Text: "Keep the injured limb still and support it in the position found. Do not try to straighten the limb or push a protruding bone back in. Apply a cold pack wrapped in cloth to reduce swelling and get medical help. For a suspected spinal injury, do not move the person at all.",
	},
	{
		Title: "Snake Bite", Category: "bites", Severity: "critical",
		Source: "WHO Guidelines for the Management of Snakebites", ScenarioID: "scenario_snakebite_1",
		Text: "Keep the person calm and still, with the bitten limb immobilized below heart level. Remove rings and tight clothing before swelling starts. Do not cut the wound, suck out venom, or apply a tourniquet or ice. Get the person to a hospital with antivenom as quickly as possible.",
	},
	{
		Title: "Poisoning", Category: "poisoning", Severity: "critical",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_poisoning_1",
		Text: "Call poison control or emergency services immediately. Do not induce vomiting unless told to by a professional. If the poison is on the skin, remove contaminated clothing and rinse the skin with running water for 15 to 20 minutes. Keep the container or label to show responders.",
	},
	{
		Title: "Heat Stroke", Category: "heat", Severity: "critical",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_heat_1",
		Text: "Move the person to a cool, shaded place and remove excess clothing. Cool them actively with cool water, wet cloths, or fanning, focusing on the neck, armpits, and groin. Give small sips of cool water only if they are fully alert. Call emergency services if confusion or collapse occurs.",
	},
	{
		Title: "Hypothermia", Category: "cold", Severity: "serious",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_cold_1",
		Text: "Move the person out of the cold and remove wet clothing. Warm them gradually with blankets and warm, sweet drinks if they are alert. Do not use direct heat such as hot water or heating pads, and do not rub the skin. Handle the person gently and seek medical help.",
	},
	{
		Title: "Nosebleed", Category: "bleeding", Severity: "minor",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_bleeding_2",
		Text: "Sit the person down, leaning slightly forward. Pinch the soft part of the nose firmly for 10 minutes without releasing. Ask them to breathe through their mouth and spit out any blood. Seek medical help if bleeding continues after 30 minutes or follows a head injury.",
	},
	{
		Title: "Seizure", Category: "neurological", Severity: "serious",
		Source: "IFRC International First Aid Guidelines 2020", ScenarioID: "scenario_seizure_1",
		Text: "Protect the person from injury by clearing the area and cushioning their head. Do not restrain them or put anything in their mouth. Time the seizure. When movements stop, roll them onto their side into the recovery position. Call emergency services if the seizure lasts more than 5 minutes.",
	},
}

func loadCorpus(path string) ([]chunkRecord, error) {
	if path == "" {
		return sampleCorpus, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	return records, nil
}

// seedBatched embeds and stores records in batches. Re-running over the
// same corpus is a no-op: chunk IDs are derived from chunk text.
func seedBatched(ctx context.Context, repo storage.ChunkRepository, embedder ai.Embedder, records []chunkRecord, batchSize int) (int, error) {
	stored := 0

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, record := range batch {
			texts[i] = record.Text
		}

		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return stored, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return stored, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		chunks := make([]*core.Chunk, len(batch))
		for i, record := range batch {
			chunks[i] = &core.Chunk{
				Text:       record.Text,
				Title:      record.Title,
				Category:   record.Category,
				Severity:   record.Severity,
				Source:     record.Source,
				ScenarioID: record.ScenarioID,
				Vector:     vectors[i],
			}
		}

		if _, err := repo.AddChunks(ctx, chunks...); err != nil {
			return stored, fmt.Errorf("failed to store batch: %w", err)
		}
		stored += len(batch)
	}

	return stored, nil
}

func main() {
	flag.Parse()

	records, err := loadCorpus(*corpusFileName)
	if err != nil {
		slog.Error("failed to load corpus", "err", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		slog.Error("corpus is empty")
		os.Exit(1)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(*host),
		ai.WithEmbeddingModel(*embeddingModel),
	)
	if err := aiConfig.Validate(); err != nil {
		slog.Error("invalid AI configuration", "err", err)
		os.Exit(1)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		slog.Error("failed to create embedder", "err", err)
		os.Exit(1)
	}

	chunkRepo, _, backend, err := badger.NewRepositories(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer backend.Close()
	defer chunkRepo.Close()

	stored, err := seedBatched(context.Background(), chunkRepo, embedder, records, *batchSize)
	if err != nil {
		slog.Error("seeding failed", "stored", stored, "err", err)
		os.Exit(1)
	}

	slog.Info("seeding complete", "chunks", stored, "db", *dbPath)
}
