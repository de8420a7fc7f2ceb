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


// Package search provides staged hybrid retrieval over the first-aid
// knowledge base.
//
// The Engine type implements a fixed four-stage pipeline:
//   - Primary semantic search using vector embeddings
//   - Parallel semantic search over synonym-expanded query variants
//   - Keyword fallback via the inverted text index when recall is thin
//   - A relaxed second-chance semantic re-query when nothing matched
//
// Candidates are deduplicated by chunk ID across stages (the earliest
// stage to produce a chunk wins) and ordered by relevance. The Reranker
// then applies a small keyword-overlap boost to break near-ties.
package search
