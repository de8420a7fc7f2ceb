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


// Package respond turns ranked retrieval results into answer text.
//
// The Synthesizer builds a structured prompt from the question, the
// assembled context blocks, and recent conversation history, then calls
// the generator with fixed decoding parameters. Generation failures
// degrade to a static safety message rather than surfacing errors to
// callers; a life-safety assistant must always produce an answer.
//
// The FallbackResponder covers the zero-candidate path with a fixed
// decision table of canned guidance, and never calls the generator.
//
// All outgoing text passes through Sanitize, which strips markdown
// artifacts the model tends to emit.
package respond
