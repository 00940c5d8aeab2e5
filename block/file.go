package block

// File is the decoded FILE block: unlike SYMB and INFO it has no internal
// structure worth parsing eagerly -- it is a flat span of bytes, the
// file-coordinate addresses GroupEntry.file_offset and FileInfo's positions
// point into. Interpreting the payload bytes themselves (DSP/IMA ADPCM,
// RIFF, etc.) is out of scope.
type File struct {
	Header BlockHeader
	// Origin is the file-absolute byte address this block's body starts at
	// (bodyOrigin passed to ReadFile). GroupInfo.file_base is itself a
	// file-absolute address, so GroupInfo.FileRange does not add Origin.
	Origin int64
	// Length is the body's byte length, Header.Size.
	Length int64
}

// ReadFile records the FILE block's span without reading its payload.
func ReadFile(bodyOrigin int64, hdr BlockHeader) File {
	return File{Header: hdr, Origin: bodyOrigin, Length: int64(hdr.Size)}
}

// Span returns the file-absolute byte range [start, start+length) for a
// byte range expressed relative to this block's body.
func (f File) Span(offset, length int64) (start, end int64) {
	start = f.Origin + offset
	end = start + length
	return start, end
}
