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

// Package search runs the full windowed scoring pipeline for one query.
//
// A search segments the corpus into units, slides windows of every requested
// size over them, scores the resulting spans against the query, averages
// span scores back onto the units they cover, and keeps the best units under
// a selection policy:
//
//	corpus -> units -> spans -> scored spans -> unit statistics -> selection
//
// Dense and hybrid retrieval score against an embedding index that is built
// once per content address and reused by later searches over the same corpus,
// window sizes and embedding configuration.
//
// A SearchMonitor passed to SearchWithMonitor is called after each stage.
package search
