package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// sends one prompt to a provider and returns the raw reply text
type completeFunc func(ctx context.Context, prompt string) (string, error)

// runBatches splits items into batches of opts.BatchSize. Each batch becomes
// one API request; up to concurrency workers pull batches from a shared
// queue. The first failing batch cancels the rest.
func runBatches(
	ctx context.Context,
	items []Item,
	opts Options,
	concurrency int,
	complete completeFunc,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batchSize := opts.batchSize()
	var batches [][]Item
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}

	translateBatch := func(ctx context.Context, batch []Item) ([]Result, error) {
		reply, err := complete(ctx, BuildPrompt(opts, batch))
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
		return parseReply(reply, batch)
	}

	if len(batches) == 1 {
		return translateBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []Result
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := translateBatch(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var (
		allResults []Result
		firstErr   error
		done       int
	)
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", result.Index, result.Error)
			}
			continue
		}
		done++
		allResults = append(allResults, result.Results...)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	// workers stop early only when the parent context ends
	if done != len(batches) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("translated %d of %d batches", done, len(batches))
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

// parseReply extracts the JSON results and checks they answer exactly the
// batch's indices.
func parseReply(reply string, batch []Item) ([]Result, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, fmt.Errorf("empty response from provider")
	}

	reply = cleanJSONResponse(reply)

	results, err := extractTranslationResults(reply)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(reply, 200),
		)
	}

	if len(results) != len(batch) {
		return nil, fmt.Errorf("expected %d results, got %d", len(batch), len(results))
	}

	want := make(map[int]bool, len(batch))
	for _, item := range batch {
		want[item.Index] = true
	}
	for _, r := range results {
		if !want[r.Index] {
			return nil, fmt.Errorf("unexpected or duplicate result index %d", r.Index)
		}
		delete(want, r.Index)
	}

	return results, nil
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences such as \N by escaping the backslash,
// so the literal text survives decoding.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(s[i])
		i++
	}

	return result.String()
}

func extractTranslationResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

// accepts a bare array or an object wrapping one
func tryExtractResults(raw json.RawMessage) ([]Result, bool) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err == nil && validateResults(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "translations", "data", "items"} {
		if fieldRaw, exists := wrapper[key]; exists {
			if err := json.Unmarshal(fieldRaw, &results); err == nil && validateResults(results) {
				return results, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if err := json.Unmarshal(fieldRaw, &results); err == nil && validateResults(results) {
			return results, true
		}
	}

	return nil, false
}

func validateResults(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
