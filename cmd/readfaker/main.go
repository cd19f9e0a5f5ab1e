// readfaker synthesizes artificial sequencing reads that resemble an
// observed run: read lengths and quality strings are drawn from models
// fitted to a real FASTQ file, substitution/indel errors are injected
// per base, and the result is written as FASTQ.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/snksoft/crc"
	"github.com/spf13/cobra"

	"readfaker/gen"
	"readfaker/io/fasta"
	"readfaker/io/fastq"
	"readfaker/model"
)

type options struct {
	reference string
	input     string
	output    string
	numReads  int
	seed      int64
	idPrefix  string
	verbose   bool

	subRate float64
	insRate float64
	delRate float64
	insExt  float64
	delExt  float64

	bucketWidth     int
	maxBucketLength int
	bucketCapacity  int

	saveModels string
	loadModels string
	retryLimit int
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "readfaker",
	Short: "Simulate sequencing reads with realistic quality profiles",
	Long: `readfaker fits empirical read-length and quality-score models to an
observed FASTQ run, then samples subsequences from reference FASTA
sequences and injects substitution, insertion and deletion errors at
rates driven by each base's quality score.`,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&opts.reference, "reference", "r", "", "reference sequences (FASTA, optionally gzipped) to sample reads from")
	f.StringVarP(&opts.input, "input", "i", "", "observed FASTQ file (optionally gzipped) to fit length and quality models")
	f.StringVarP(&opts.output, "output", "o", "", "output FASTQ file for simulated reads (gzipped if named *.gz)")
	f.IntVarP(&opts.numReads, "num-reads", "n", 10000, "number of reads to generate")
	f.Int64VarP(&opts.seed, "seed", "s", 0, "random seed for reproducibility (0 uses the wall clock)")
	f.StringVar(&opts.idPrefix, "id-prefix", "", "prefix for generated read ids (default derived from the run id)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	f.Float64Var(&opts.subRate, "substitution-rate", model.DefaultSubstitutionRate, "probability an errored base is a substitution")
	f.Float64Var(&opts.insRate, "insertion-rate", model.DefaultInsertionRate, "probability an errored base starts an insertion")
	f.Float64Var(&opts.delRate, "deletion-rate", model.DefaultDeletionRate, "probability an errored base starts a deletion")
	f.Float64Var(&opts.insExt, "insertion-extension", model.DefaultInsertionExtension, "probability an insertion extends by one more base")
	f.Float64Var(&opts.delExt, "deletion-extension", model.DefaultDeletionExtension, "probability a deletion extends by one more base")

	f.IntVar(&opts.bucketWidth, "bucket-width", model.DefaultBucketWidth, "width of each quality-model length bucket in bases")
	f.IntVar(&opts.maxBucketLength, "max-bucket-length", model.DefaultMaxBucketLength, "read length above which qualities share the catch-all bucket")
	f.IntVar(&opts.bucketCapacity, "bucket-capacity", model.DefaultBucketCapacity, "maximum quality strings stored per bucket")

	f.StringVar(&opts.saveModels, "save-models", "", "write the fitted models to this file after fitting")
	f.StringVar(&opts.loadModels, "load-models", "", "load previously fitted models instead of reading --input")
	f.IntVar(&opts.retryLimit, "retry-limit", gen.DefaultRetryLimit, "attempts per read before giving up on transient mismatches")

	rootCmd.MarkFlagRequired("reference")
	rootCmd.MarkFlagRequired("output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr)
	if opts.verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	if opts.input == "" && opts.loadModels == "" {
		return fmt.Errorf("either --input or --load-models is required")
	}

	runID := uuid.New().String()
	idPrefix := opts.idPrefix
	if idPrefix == "" {
		idPrefix = "read_" + runID[:8]
	}

	logger.Debug("configuration",
		"reference", opts.reference,
		"input", opts.input,
		"output", opts.output,
		"num_reads", opts.numReads,
		"seed", opts.seed,
		"run_id", runID)

	start := time.Now()

	refs, err := fasta.Read(opts.reference)
	if err != nil {
		return fmt.Errorf("reading references: %w", err)
	}
	logger.Debug("references loaded", "sequences", len(refs), "bases", fasta.TotalLength(refs))

	lm, qm, err := loadOrFitModels(logger)
	if err != nil {
		return err
	}

	em, err := model.NewErrorModel(model.ErrorRates{
		Substitution:       opts.subRate,
		Insertion:          opts.insRate,
		Deletion:           opts.delRate,
		InsertionExtension: opts.insExt,
		DeletionExtension:  opts.delExt,
	})
	if err != nil {
		return fmt.Errorf("invalid error rates: %w", err)
	}

	g, err := gen.New(refs, lm, qm, em, gen.Config{
		Seed:       opts.seed,
		IDPrefix:   idPrefix,
		RetryLimit: opts.retryLimit,
	})
	if err != nil {
		return err
	}

	w, err := fastq.NewWriter(opts.output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	digest := crc.NewHash(crc.CRC64ECMA)
	bases := 0
	for i := 0; i < opts.numReads; i++ {
		r, err := g.GenerateRead()
		if err != nil {
			w.Close()
			return fmt.Errorf("generating read %d: %w", i+1, err)
		}

		if err := w.Write(r.ID, r.Seq, r.Qual); err != nil {
			w.Close()
			return fmt.Errorf("writing read %s: %w", r.ID, err)
		}

		digest.Write(r.Seq)
		digest.Write(r.Qual)
		bases += len(r.Seq)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	logger.Info("done",
		"reads", opts.numReads,
		"bases", bases,
		"output", opts.output,
		"digest", fmt.Sprintf("%016x", digest.CRC()),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return nil
}

// loadOrFitModels loads cached models when requested, otherwise fits
// fresh ones from the observed run, optionally caching them for the
// next invocation.
func loadOrFitModels(logger *log.Logger) (*model.LengthModel, *model.QualityModel, error) {
	if opts.loadModels != "" {
		lm, qm, err := model.Load(opts.loadModels)
		if err != nil {
			return nil, nil, fmt.Errorf("loading models: %w", err)
		}

		logger.Debug("models loaded", "path", opts.loadModels, "observed_reads", lm.Total())
		return lm, qm, nil
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	lm := model.NewLengthModel()
	qm := model.NewQualityModel(opts.bucketWidth, opts.maxBucketLength, opts.bucketCapacity)

	err := model.Fit(lm, qm, rnd, func(observe func(length int, quality []byte)) error {
		return fastq.Parse(opts.input, func(id string, seq, qual []byte) error {
			observe(len(seq), qual)
			return nil
		})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fitting models from %s: %w", opts.input, err)
	}

	if lm.Total() == 0 {
		return nil, nil, fmt.Errorf("no reads found in %s", opts.input)
	}
	logger.Debug("models fitted", "observed_reads", lm.Total())

	if opts.saveModels != "" {
		if err := model.Save(opts.saveModels, lm, qm); err != nil {
			return nil, nil, fmt.Errorf("saving models: %w", err)
		}
		logger.Debug("models saved", "path", opts.saveModels)
	}

	return lm, qm, nil
}
