// Copyright 2021 Airbus Defence and Space
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

// Package warp implements the chunking and buffer-orchestration core of a
// memory-bounded image reprojection engine.
//
// The overall warp is split into a few components, mirroring the classic
// GDAL high performance image warper design:
//
//   - The transformation between destination and source pixel coordinates
//     is handled by a TransformFunc collaborator. It is ultimately
//     responsible for translating pixel/line locations on the destination
//     image to pixel/line locations on the source image.
//
//   - In order to handle images too large to hold in RAM, the warper needs
//     to segment large images. This is the responsibility of Operation.
//     Operation.ChunkAndWarp invokes Operation.warpRegion on chunks of
//     output and input image small enough to fit within the memory budget
//     configured on Options.
//
//   - warpRegion creates and loads an output image buffer, then calls
//     warpRegionToBuffer.
//
//   - warpRegionToBuffer loads the source imagery corresponding to a
//     particular output region, generates masks and density masks from
//     the source and destination imagery, and hands all of it to the
//     Kernel collaborator.
//
//   - Kernel does the actual resampling, but is given fully resident
//     input and output buffers to operate on. It does no I/O, and knows
//     nothing about datasets; it invokes the transform function to get
//     sample locations and builds output values based on the resampling
//     algorithm in use, taking validity and density masks into account.
package warp
