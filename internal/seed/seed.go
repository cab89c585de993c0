// Package seed imports capsule documents written in CUE into the store.
//
// Seed files unify against the embedded schema before decoding, so range
// and enum violations surface with CUE positions instead of as half-written
// records. Import is additive and id-idempotent: existing ids are skipped,
// never overwritten.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/store"
)

//go:embed schema.cue
var schemaSource string

// Document is a decoded seed file: capsules and chains ready to import.
type Document struct {
	Capsules []capsule.TimeCapsule
	Chains   []capsule.MemoryChain
}

// LoadError is a seed loading failure, carrying the CUE position when one
// is available.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// seedCapsule mirrors #Capsule; unlockDate stays a string until parsed.
type seedCapsule struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	MediaFiles []seedMedia        `json:"mediaFiles"`
	Location   capsule.Location   `json:"location"`
	UnlockDate string             `json:"unlockDate"`
	CreatedBy  string             `json:"createdBy"`
	IsPublic   bool               `json:"isPublic"`
	AccessKey  string             `json:"accessKey"`
	ChainID    string             `json:"chainId"`
	ChainOrder int                `json:"chainOrder"`
}

type seedMedia struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type seedChain struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CapsuleIDs  []string `json:"capsuleIds"`
	CreatedBy   string   `json:"createdBy"`
	IsPublic    bool     `json:"isPublic"`
}

type seedDoc struct {
	Capsules []seedCapsule `json:"capsules"`
	Chains   []seedChain   `json:"chains"`
}

// Load reads every .cue file in dir, unifies the result against the seed
// schema and decodes it. createdBy and now fill the fields seed files may
// omit.
func Load(dir, createdBy string, now time.Time) (*Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("seed directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("scanning %s: %v", dir, err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("building CUE value: %v", err), Pos: value.Pos()}
	}

	return compile(ctx, value, createdBy, now)
}

// Compile unifies an already-built CUE value against the seed schema and
// decodes it. Load and the tests both funnel through here.
func Compile(ctx *cue.Context, value cue.Value, createdBy string, now time.Time) (*Document, error) {
	return compile(ctx, value, createdBy, now)
}

func compile(ctx *cue.Context, value cue.Value, createdBy string, now time.Time) (*Document, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("compiling seed schema: %v", err)}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("seed does not match schema: %v", err), Pos: value.Pos()}
	}

	var raw seedDoc
	if err := unified.Decode(&raw); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("decoding seed: %v", err)}
	}

	doc := &Document{}
	for i, sc := range raw.Capsules {
		c, err := convertCapsule(sc, createdBy, now)
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("capsules[%d]: %v", i, err)}
		}
		doc.Capsules = append(doc.Capsules, c)
	}
	for _, ch := range raw.Chains {
		doc.Chains = append(doc.Chains, convertChain(ch, createdBy))
	}
	return doc, nil
}

func convertCapsule(sc seedCapsule, createdBy string, now time.Time) (capsule.TimeCapsule, error) {
	unlockAt, err := time.Parse(time.RFC3339, sc.UnlockDate)
	if err != nil {
		return capsule.TimeCapsule{}, fmt.Errorf("unlockDate: %w", err)
	}

	c := capsule.TimeCapsule{
		ID:          sc.ID,
		Title:       capsule.Normalize(sc.Title),
		Message:     capsule.Normalize(sc.Message),
		MediaFiles:  []capsule.MediaFile{},
		Location:    sc.Location,
		UnlockDate:  unlockAt,
		CreatedDate: now,
		CreatedBy:   sc.CreatedBy,
		IsPublic:    sc.IsPublic,
		AccessKey:   capsule.Normalize(sc.AccessKey),
		ChainID:     sc.ChainID,
		ChainOrder:  sc.ChainOrder,
	}
	c.Location.Address = capsule.Normalize(c.Location.Address)
	if c.ID == "" {
		c.ID = capsule.NewCapsuleID()
	}
	if c.CreatedBy == "" {
		c.CreatedBy = createdBy
	}
	for _, m := range sc.MediaFiles {
		mf := capsule.MediaFile{
			ID:       m.ID,
			Kind:     capsule.MediaKind(m.Type),
			URL:      m.URL,
			Filename: m.Filename,
		}
		if mf.ID == "" {
			mf.ID = capsule.NewMediaID()
		}
		c.MediaFiles = append(c.MediaFiles, mf)
	}

	if err := capsule.Validate(c); err != nil {
		return capsule.TimeCapsule{}, err
	}
	return c, nil
}

func convertChain(ch seedChain, createdBy string) capsule.MemoryChain {
	out := capsule.MemoryChain{
		ID:          ch.ID,
		Title:       capsule.Normalize(ch.Title),
		Description: capsule.Normalize(ch.Description),
		CapsuleIDs:  ch.CapsuleIDs,
		CreatedBy:   ch.CreatedBy,
		IsPublic:    ch.IsPublic,
	}
	if out.ID == "" {
		out.ID = capsule.NewChainID()
	}
	if out.CreatedBy == "" {
		out.CreatedBy = createdBy
	}
	if out.CapsuleIDs == nil {
		out.CapsuleIDs = []string{}
	}
	return out
}

// Import merges a document into the store. Capsules and chains whose id is
// already present are skipped. Returns the number of capsules added.
func Import(ctx context.Context, records *store.Records, doc *Document) (int, error) {
	capsules, err := records.Capsules(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(capsules))
	for _, c := range capsules {
		have[c.ID] = struct{}{}
	}

	added := 0
	for _, c := range doc.Capsules {
		if _, ok := have[c.ID]; ok {
			continue
		}
		capsules = append(capsules, c)
		have[c.ID] = struct{}{}
		added++
	}
	if added > 0 {
		if err := records.SaveCapsules(ctx, capsules); err != nil {
			return 0, err
		}
	}

	if len(doc.Chains) > 0 {
		chains, err := records.Chains(ctx)
		if err != nil {
			return added, err
		}
		haveChains := make(map[string]struct{}, len(chains))
		for _, ch := range chains {
			haveChains[ch.ID] = struct{}{}
		}
		changed := false
		for _, ch := range doc.Chains {
			if _, ok := haveChains[ch.ID]; ok {
				continue
			}
			chains = append(chains, ch)
			haveChains[ch.ID] = struct{}{}
			changed = true
		}
		if changed {
			if err := records.SaveChains(ctx, chains); err != nil {
				return added, err
			}
		}
	}

	return added, nil
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
