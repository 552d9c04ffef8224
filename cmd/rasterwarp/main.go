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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/geowarp/warp"
	"github.com/geowarp/warp/kernel"
	"github.com/geowarp/warp/raster"
	"github.com/geowarp/warp/transform"
)

var (
	srcURI      string
	dstURI      string
	width       int
	height      int
	bandCount   int
	dataType    string
	resampling  string
	memoryLimit float64
	initDest    string
	blockSize   uint
	cacheBlocks int
)

func init() {
	warpCommand.Flags().StringVar(&srcURI, "src", "", "source gs://bucket/object raw raster")
	warpCommand.Flags().StringVar(&dstURI, "dst", "", "destination gs://bucket/object to create")
	warpCommand.Flags().IntVar(&width, "width", 0, "destination width in pixels")
	warpCommand.Flags().IntVar(&height, "height", 0, "destination height in pixels")
	warpCommand.Flags().IntVar(&bandCount, "bands", 1, "band count (same on source and destination)")
	warpCommand.Flags().StringVar(&dataType, "type", "Byte", "working data type: Byte,UInt16,Int16,UInt32,Int32,Float32,Float64")
	warpCommand.Flags().StringVar(&resampling, "r", "Nearest", "resampling algorithm: Nearest,Bilinear,Cubic")
	warpCommand.Flags().Float64Var(&memoryLimit, "memlimit", 64*1024*1024, "memory budget in bytes")
	warpCommand.Flags().StringVar(&initDest, "init-dest", "", "INIT_DEST literal, e.g. \"0\" or \"NO_DATA\"")
	warpCommand.Flags().UintVar(&blockSize, "gs.blocksize", 1<<20, "gs:// block size in bytes")
	warpCommand.Flags().IntVar(&cacheBlocks, "gs.numblocks", 1000, "number of gs:// blocks to cache")
}

func main() {
	if err := warpCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var warpCommand = &cobra.Command{
	Use:   "rasterwarp --src gs://in/raw.bin --dst gs://out/out.tif --width W --height H",
	Short: "warp a raw band-planar gs:// raster into a tiled GeoTIFF gs:// object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		dt, err := parseDataType(dataType)
		if err != nil {
			return err
		}
		alg, err := parseResampling(resampling)
		if err != nil {
			return err
		}

		stcl, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create gcs storage client: %w", err)
		}

		src, err := raster.OpenCloudDataset(ctx, raster.CloudDatasetConfig{
			Client: stcl, URI: srcURI, Width: width, Height: height,
			BandCount: bandCount, DataType: dt,
			BlockSize: blockSize, CacheBlocks: cacheBlocks,
		})
		if err != nil {
			return fmt.Errorf("open source %s: %w", srcURI, err)
		}

		dst, err := raster.OpenCloudDataset(ctx, raster.CloudDatasetConfig{
			Client: stcl, URI: dstURI, Width: width, Height: height,
			BandCount: bandCount, DataType: dt, Writable: true,
			BlockSize: blockSize, CacheBlocks: cacheBlocks,
		})
		if err != nil {
			return fmt.Errorf("open destination %s: %w", dstURI, err)
		}

		opts := warp.Options{
			Src:         src,
			Dst:         dst,
			WorkingType: dt,
			Resampling:  alg,
			MemoryLimit: memoryLimit,
			Transformer: transform.NewIdentity().TransformFunc,
			Kernel:      kernel.Resampler{},
			Progress: func(_ interface{}, complete float64, message string) bool {
				fmt.Printf("\r%.1f%% %s", complete*100, message)
				return true
			},
			Diagnostics: func(sev warp.Severity, code warp.Code, msg string) {
				fmt.Fprintf(os.Stderr, "[%v/%v] %s\n", sev, code, msg)
			},
		}
		if initDest != "" {
			opts.WarpOptions = map[string]string{"INIT_DEST": initDest}
		}

		var op warp.Operation
		if err := op.Initialize(opts); err != nil {
			return fmt.Errorf("initialize warp operation: %w", err)
		}

		if err := op.ChunkAndWarp(warp.Rect{X0: 0, Y0: 0, W: width, H: height}); err != nil {
			return fmt.Errorf("chunk and warp: %w", err)
		}
		fmt.Println()

		if err := dst.Close(); err != nil {
			return fmt.Errorf("close destination: %w", err)
		}
		return nil
	},
}

func parseDataType(s string) (warp.DataType, error) {
	switch strings.ToLower(s) {
	case "byte":
		return warp.Byte, nil
	case "uint16":
		return warp.UInt16, nil
	case "int16":
		return warp.Int16, nil
	case "uint32":
		return warp.UInt32, nil
	case "int32":
		return warp.Int32, nil
	case "float32":
		return warp.Float32, nil
	case "float64":
		return warp.Float64, nil
	default:
		return warp.Unknown, fmt.Errorf("unknown data type %q", s)
	}
}

func parseResampling(s string) (warp.ResamplingAlg, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return warp.Nearest, nil
	case "bilinear":
		return warp.Bilinear, nil
	case "cubic":
		return warp.Cubic, nil
	default:
		return 0, fmt.Errorf("unknown resampling algorithm %q", s)
	}
}
