// Package extract runs the batch pipeline: for each discovered video, open
// it, read its first frame, and write that frame next to the video as
// "<stem>_first_frame.png".
//
// Videos are processed one at a time. A failure on one video is recorded in
// the [Summary] under one of three kinds ([KindDecodeOpen], [KindNoFrame],
// [KindWrite]) and the run moves on:
//
//	dir, err := discover.Open(path)
//	// ...
//	x := extract.New(ffmpeg.New(), pngfile.New())
//	summary, err := x.Run(ctx, dir, observer)
//
// Progress and results are delivered to an [Observer].
package extract
