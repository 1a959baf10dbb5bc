package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/ai/openai"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/evidence"
	"github.com/poiesic/evidentia/storage"
	"github.com/poiesic/evidentia/storage/badger"
)

// seedEntry is one supplement in a seed file.
type seedEntry struct {
	Name           string   `json:"name"`
	ScientificName string   `json:"scientificName,omitempty"`
	CommonNames    []string `json:"commonNames,omitempty"`
	Category       string   `json:"category,omitempty"`
	Popularity     string   `json:"popularity,omitempty"`
}

var supplements = []seedEntry{
	{Name: "creatine", ScientificName: "creatine monohydrate", CommonNames: []string{"creatine monohydrate", "kreatin"}, Category: "performance", Popularity: "high"},
	{Name: "whey protein", CommonNames: []string{"whey", "whey isolate"}, Category: "protein", Popularity: "high"},
	{Name: "vitamin d", ScientificName: "cholecalciferol", CommonNames: []string{"vitamin d3", "cholecalciferol"}, Category: "vitamin", Popularity: "high"},
	{Name: "vitamin c", ScientificName: "ascorbic acid", CommonNames: []string{"ascorbic acid"}, Category: "vitamin", Popularity: "high"},
	{Name: "omega-3", ScientificName: "eicosapentaenoic acid", CommonNames: []string{"fish oil", "epa", "dha"}, Category: "fatty-acid", Popularity: "high"},
	{Name: "magnesium", CommonNames: []string{"magnesium glycinate", "magnesium citrate"}, Category: "mineral", Popularity: "high"},
	{Name: "zinc", CommonNames: []string{"zinc picolinate"}, Category: "mineral", Popularity: "high"},
	{Name: "melatonin", Category: "sleep", Popularity: "high"},
	{Name: "caffeine", CommonNames: []string{"caffeine anhydrous"}, Category: "stimulant", Popularity: "high"},
	{Name: "ashwagandha", ScientificName: "withania somnifera", CommonNames: []string{"withania"}, Category: "adaptogen", Popularity: "high"},
	{Name: "turmeric", ScientificName: "curcuma longa", CommonNames: []string{"curcumin"}, Category: "herb", Popularity: "high"},
	{Name: "probiotics", CommonNames: []string{"lactobacillus", "bifidobacterium"}, Category: "gut-health", Popularity: "high"},
	{Name: "collagen", CommonNames: []string{"collagen peptides", "hydrolyzed collagen"}, Category: "protein", Popularity: "medium"},
	{Name: "beta-alanine", Category: "performance", Popularity: "medium"},
	{Name: "l-theanine", ScientificName: "theanine", Category: "nootropic", Popularity: "medium"},
	{Name: "glutamine", ScientificName: "l-glutamine", Category: "amino-acid", Popularity: "medium"},
	{Name: "taurine", Category: "amino-acid", Popularity: "medium"},
	{Name: "iron", CommonNames: []string{"ferrous sulfate"}, Category: "mineral", Popularity: "medium"},
	{Name: "calcium", CommonNames: []string{"calcium carbonate"}, Category: "mineral", Popularity: "medium"},
	{Name: "vitamin b12", ScientificName: "cobalamin", CommonNames: []string{"methylcobalamin"}, Category: "vitamin", Popularity: "medium"},
	{Name: "folate", ScientificName: "folic acid", CommonNames: []string{"vitamin b9"}, Category: "vitamin", Popularity: "medium"},
	{Name: "coq10", ScientificName: "coenzyme q10", CommonNames: []string{"ubiquinone", "ubiquinol"}, Category: "antioxidant", Popularity: "medium"},
	{Name: "n-acetyl cysteine", ScientificName: "n-acetylcysteine", CommonNames: []string{"nac"}, Category: "antioxidant", Popularity: "medium"},
	{Name: "rhodiola", ScientificName: "rhodiola rosea", CommonNames: []string{"golden root"}, Category: "adaptogen", Popularity: "medium"},
	{Name: "ginkgo biloba", CommonNames: []string{"ginkgo"}, Category: "herb", Popularity: "medium"},
	{Name: "ginseng", ScientificName: "panax ginseng", Category: "adaptogen", Popularity: "medium"},
	{Name: "valerian root", ScientificName: "valeriana officinalis", CommonNames: []string{"valerian"}, Category: "sleep", Popularity: "medium"},
	{Name: "milk thistle", ScientificName: "silybum marianum", CommonNames: []string{"silymarin"}, Category: "herb", Popularity: "medium"},
	{Name: "berberine", Category: "metabolic", Popularity: "medium"},
	{Name: "quercetin", Category: "antioxidant", Popularity: "low"},
	{Name: "resveratrol", Category: "antioxidant", Popularity: "low"},
	{Name: "citrulline", ScientificName: "l-citrulline", CommonNames: []string{"citrulline malate"}, Category: "performance", Popularity: "low"},
	{Name: "lion's mane", ScientificName: "hericium erinaceus", Category: "nootropic", Popularity: "low"},
	{Name: "bacopa monnieri", CommonNames: []string{"brahmi"}, Category: "nootropic", Popularity: "low"},
	{Name: "fenugreek", ScientificName: "trigonella foenum-graecum", Category: "herb", Popularity: "low"},
	{Name: "saw palmetto", ScientificName: "serenoa repens", Category: "herb", Popularity: "low"},
	{Name: "alpha-gpc", ScientificName: "alpha-glycerophosphocholine", Category: "nootropic", Popularity: "low"},
	{Name: "glycine", Category: "amino-acid", Popularity: "low"},
	{Name: "inositol", ScientificName: "myo-inositol", Category: "metabolic", Popularity: "low"},
	{Name: "boron", Category: "mineral", Popularity: "low"},
}

var (
	dbPath         = flag.String("db", "./catalog_db", "path to BadgerDB database directory")
	seedFileName   = flag.String("src", "", "JSON file of seed supplements")
	aiHost         = flag.String("ai-host", "http://localhost:11434/v1", "OpenAI-compatible embedding service host URL")
	embeddingModel = flag.String("embedding-model", "embeddinggemma", "embedding model name")
	dimensions     = flag.Int("embedding-dimensions", 512, "embedding vector dimension")
	pubmedKey      = flag.String("pubmed-api-key", os.Getenv("PUBMED_API_KEY"), "NCBI API key for evidence lookups")
	validate       = flag.Bool("validate", true, "grade entries against the evidence oracle")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// entriesFromFile reads seed entries from a JSON array file.
func entriesFromFile(filename string) ([]seedEntry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// seed grades, embeds and stores one entry. Already-indexed names are
// skipped so reruns are safe.
func seed(ctx context.Context, repo storage.SupplementRepository, embedder ai.Embedder, oracle evidence.Oracle, dim int, entry seedEntry) error {
	if _, err := repo.FindByName(ctx, entry.Name); err == nil {
		slog.Info("already indexed, skipping", "name", entry.Name)
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	metadata := core.SupplementMetadata{
		Category:   entry.Category,
		Popularity: entry.Popularity,
	}
	if oracle != nil {
		count, err := oracle.StudyCount(ctx, entry.Name)
		if err != nil {
			return err
		}
		metadata.Grade = core.GradeForStudyCount(count.Count)
		metadata.StudyCount = count.Count
		metadata.OracleQuery = count.OracleQuery
	}

	vector, err := embedder.EmbedText(ctx, entry.Name)
	if err != nil {
		return err
	}

	record := &core.SupplementRecord{
		Name:           entry.Name,
		ScientificName: entry.ScientificName,
		CommonNames:    entry.CommonNames,
		Vector:         vector,
		Metadata:       metadata,
	}
	if err := core.ValidateRecord(record, dim); err != nil {
		return err
	}

	if _, err := repo.AddSupplements(ctx, record); err != nil {
		return err
	}

	slog.Info("seeded", "name", entry.Name, "grade", metadata.Grade, "studies", metadata.StudyCount)
	return nil
}

func main() {
	flag.Parse()

	ctx := context.Background()

	stores, err := badger.OpenStores(*dbPath)
	if err != nil {
		panic(err)
	}
	defer stores.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(*aiHost),
		ai.WithEmbeddingModel(*embeddingModel),
		ai.WithEmbeddingDimensions(*dimensions),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		panic(err)
	}

	var oracle evidence.Oracle
	if *validate {
		pubmedOpts := []evidence.PubMedOption{}
		if *pubmedKey != "" {
			pubmedOpts = append(pubmedOpts, evidence.WithAPIKey(*pubmedKey))
		}
		oracle = evidence.NewCachedOracle(
			evidence.NewPubMedOracle(pubmedOpts...),
			stores.Evidence,
			evidence.DefaultCountTTL,
		)
	}

	entries := supplements
	if *seedFileName != "" {
		entries, err = entriesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}

	for _, entry := range entries {
		if err := seed(ctx, stores.Supplements, embedder, oracle, *dimensions, entry); err != nil {
			slog.Error("seeding failed", "name", entry.Name, "err", err)
		}
	}
}
