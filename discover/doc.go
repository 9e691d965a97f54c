// Package discover finds candidate video files in a target directory.
//
// A directory is validated once with [Open]. [Dir.Videos] then yields every
// regular entry whose extension matches [Extensions], ignoring case:
//
//	dir, err := discover.Open(path)
//	if err != nil {
//	    // errors.Is(err, discover.ErrInvalidPath)
//	}
//
//	for v, err := range dir.Videos() {
//	    // v.OutputPath() is "<stem>_first_frame.png" next to v.Path.
//	}
package discover
