package block

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
	"github.com/kitlith/brsar/ref"
)

// SoundType discriminates a SoundInfo's details variant.
type SoundType uint8

// Known sound types.
const (
	SoundInvalid SoundType = 0
	SoundSeq     SoundType = 1
	SoundStream  SoundType = 2
	SoundWave    SoundType = 3
)

// PanMode is SoundInfo.pan_mode.
type PanMode uint8

// Known pan modes.
const (
	PanDual    PanMode = 0
	PanBalance PanMode = 1
)

// PanCurve is SoundInfo.pan_curve.
type PanCurve uint8

// Known pan curves.
const (
	PanCurveSqrt             PanCurve = 0
	PanCurveSqrt0Db          PanCurve = 1
	PanCurveSqrt0DbClamp     PanCurve = 2
	PanCurveSinCos           PanCurve = 3
	PanCurveSinCos0Db        PanCurve = 4
	PanCurveSinCos0DbClamp   PanCurve = 5
	PanCurveLinear           PanCurve = 6
	PanCurveLinear0Db        PanCurve = 7
	PanCurveLinear0DbClamp   PanCurve = 8
)

// Unit is the decode target of a reference whose payload the schema does not
// interpret (sound_info_3d: "ref → ()" in original_source/src/brsar/
// block/info.rs: `sound_info_3d: Reference<()>`). Only presence/absence and
// the raw offset are meaningful here.
type Unit struct{}

func decodeUnit(r *binstream.Reader) (Unit, error) {
	return Unit{}, nil
}

// DetailsKind discriminates which SoundDetails variant was decoded.
type DetailsKind int

// Known details kinds.
const (
	DetailsUnknown DetailsKind = iota
	DetailsSequence
	DetailsStream
	DetailsWave
)

// SeqDetails is the details body for a sequence sound, grounded on
// original_source/src/brsar/block/info.rs's SeqDetails, itself sourced from
// the tockdom wiki.
type SeqDetails struct {
	SeqLabelEntry   uint32
	SoundbankIndex  uint32
	Unknown1        [3]byte
	AllocTrack      uint8
	Priority        uint8
	Unknown2        [7]byte
}

func readSeqDetails(r *binstream.Reader) (SeqDetails, error) {
	var d SeqDetails
	var err error
	if d.SeqLabelEntry, err = r.ReadU32(); err != nil {
		return d, err
	}
	if d.SoundbankIndex, err = r.ReadU32(); err != nil {
		return d, err
	}
	u1, err := r.ReadBytes(3)
	if err != nil {
		return d, err
	}
	copy(d.Unknown1[:], u1)
	if d.AllocTrack, err = r.ReadU8(); err != nil {
		return d, err
	}
	if d.Priority, err = r.ReadU8(); err != nil {
		return d, err
	}
	u2, err := r.ReadBytes(7)
	if err != nil {
		return d, err
	}
	copy(d.Unknown2[:], u2)
	return d, nil
}

// StreamDetails is the details body for a stream sound.
type StreamDetails struct {
	StartPos     uint32
	Unknown1     uint8
	ChannelCount uint8
	AllocTrack   uint8
	Unknown2     [5]byte
}

func readStreamDetails(r *binstream.Reader) (StreamDetails, error) {
	var d StreamDetails
	var err error
	if d.StartPos, err = r.ReadU32(); err != nil {
		return d, err
	}
	if d.Unknown1, err = r.ReadU8(); err != nil {
		return d, err
	}
	if d.ChannelCount, err = r.ReadU8(); err != nil {
		return d, err
	}
	if d.AllocTrack, err = r.ReadU8(); err != nil {
		return d, err
	}
	u2, err := r.ReadBytes(5)
	if err != nil {
		return d, err
	}
	copy(d.Unknown2[:], u2)
	return d, nil
}

// WaveDetails is the details body for a wave sound.
type WaveDetails struct {
	SoundDataNode uint32
	Unknown1      [3]byte
	AllocTrack    uint8
	Priority      uint8
	Unknown2      [7]byte
}

func readWaveDetails(r *binstream.Reader) (WaveDetails, error) {
	var d WaveDetails
	var err error
	if d.SoundDataNode, err = r.ReadU32(); err != nil {
		return d, err
	}
	u1, err := r.ReadBytes(3)
	if err != nil {
		return d, err
	}
	copy(d.Unknown1[:], u1)
	if d.AllocTrack, err = r.ReadU8(); err != nil {
		return d, err
	}
	if d.Priority, err = r.ReadU8(); err != nil {
		return d, err
	}
	u2, err := r.ReadBytes(7)
	if err != nil {
		return d, err
	}
	copy(d.Unknown2[:], u2)
	return d, nil
}

// SoundDetails is the tagged union selected by SoundInfo.sound_type. An
// unrecognized tag is reported as DetailsUnknown rather than failing the
// surrounding SoundInfo decode.
type SoundDetails struct {
	Kind       DetailsKind
	UnknownTag uint8
	Seq        SeqDetails
	Stream     StreamDetails
	Wave       WaveDetails
}

// decodeSoundDetails is a ref.TaggedDecoder[SoundDetails]: tag is the
// parent SoundInfo.sound_type, not the reference envelope's own type_tag.
func decodeSoundDetails(r *binstream.Reader, tag uint8) (SoundDetails, error) {
	switch SoundType(tag) {
	case SoundSeq:
		d, err := readSeqDetails(r)
		return SoundDetails{Kind: DetailsSequence, Seq: d}, err
	case SoundStream:
		d, err := readStreamDetails(r)
		return SoundDetails{Kind: DetailsStream, Stream: d}, err
	case SoundWave:
		d, err := readWaveDetails(r)
		return SoundDetails{Kind: DetailsWave, Wave: d}, err
	default:
		dbg.Println("block.decodeSoundDetails: unrecognized sound_type tag:", tag)
		return SoundDetails{Kind: DetailsUnknown, UnknownTag: tag}, nil
	}
}

// SoundInfo is one entry of the INFO block's sound table.
type SoundInfo struct {
	StringID       uint32
	FileID         uint32
	PlayerID       TypedId
	SoundInfo3D    ref.Single[Unit]
	Volume         uint8
	PlayerPriority uint8
	SoundType      SoundType
	RemoteFilter   uint8
	Details        ref.Multi[SoundDetails]
	User           [2]uint32
	PanMode        PanMode
	PanCurve       PanCurve
	ActorPlayerID  uint8
	Reserved       uint8
}

func readSoundInfo(r *binstream.Reader) (SoundInfo, error) {
	var s SoundInfo
	var err error
	if s.StringID, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.FileID, err = r.ReadU32(); err != nil {
		return s, err
	}
	if s.PlayerID, err = readTypedId(r); err != nil {
		return s, err
	}
	if s.SoundInfo3D, err = ref.ReadSingle(r, true, decodeUnit); err != nil {
		return s, err
	}
	if s.Volume, err = r.ReadU8(); err != nil {
		return s, err
	}
	if s.PlayerPriority, err = r.ReadU8(); err != nil {
		return s, err
	}
	soundType, err := r.ReadU8()
	if err != nil {
		return s, err
	}
	s.SoundType = SoundType(soundType)
	if s.RemoteFilter, err = r.ReadU8(); err != nil {
		return s, err
	}
	if s.Details, err = ref.ReadMulti(r, soundType, decodeSoundDetails); err != nil {
		return s, err
	}
	for i := range s.User {
		if s.User[i], err = r.ReadU32(); err != nil {
			return s, err
		}
	}
	panMode, err := r.ReadU8()
	if err != nil {
		return s, err
	}
	s.PanMode = PanMode(panMode)
	panCurve, err := r.ReadU8()
	if err != nil {
		return s, err
	}
	s.PanCurve = PanCurve(panCurve)
	if s.ActorPlayerID, err = r.ReadU8(); err != nil {
		return s, err
	}
	if s.Reserved, err = r.ReadU8(); err != nil {
		return s, err
	}
	return s, nil
}

// BankInfo is one entry of the INFO block's bank table.
type BankInfo struct {
	StringID TypedId
	FileID   TypedId
	Reserved uint32
}

func readBankInfo(r *binstream.Reader) (BankInfo, error) {
	var b BankInfo
	var err error
	if b.StringID, err = readTypedId(r); err != nil {
		return b, err
	}
	if b.FileID, err = readTypedId(r); err != nil {
		return b, err
	}
	if b.Reserved, err = r.ReadU32(); err != nil {
		return b, err
	}
	return b, nil
}

// PlayerInfo is one entry of the INFO block's player table.
type PlayerInfo struct {
	StringID   TypedId
	MaxSounds  uint8
	Pad        [3]byte
	HeapSpace  uint32
	Reserved   uint32
}

func readPlayerInfo(r *binstream.Reader) (PlayerInfo, error) {
	var p PlayerInfo
	var err error
	if p.StringID, err = readTypedId(r); err != nil {
		return p, err
	}
	if p.MaxSounds, err = r.ReadU8(); err != nil {
		return p, err
	}
	pad, err := r.ReadBytes(3)
	if err != nil {
		return p, err
	}
	copy(p.Pad[:], pad)
	if p.HeapSpace, err = r.ReadU32(); err != nil {
		return p, err
	}
	if p.Reserved, err = r.ReadU32(); err != nil {
		return p, err
	}
	return p, nil
}

// FilePosition locates a file's bytes inside a group.
type FilePosition struct {
	GroupIndex uint32
	ItemIndex  uint32
}

func readFilePosition(r *binstream.Reader) (FilePosition, error) {
	var p FilePosition
	var err error
	if p.GroupIndex, err = r.ReadU32(); err != nil {
		return p, err
	}
	if p.ItemIndex, err = r.ReadU32(); err != nil {
		return p, err
	}
	return p, nil
}

func decodeFilePositionRef(r *binstream.Reader) (ref.Single[FilePosition], error) {
	return ref.ReadSingle(r, false, readFilePosition)
}

func decodeFilePositionTable(r *binstream.Reader) (ref.Table[ref.Single[FilePosition]], error) {
	return ref.ReadTable(r, decodeFilePositionRef)
}

// FileInfo is one entry of the INFO block's file table.
type FileInfo struct {
	FileSize     uint32
	ArchiveSize  uint32
	FileID       int32
	ExternalFile ref.Single[string]
	FilePositions ref.Single[ref.Table[ref.Single[FilePosition]]]
}

func readFileInfo(r *binstream.Reader) (FileInfo, error) {
	var f FileInfo
	var err error
	if f.FileSize, err = r.ReadU32(); err != nil {
		return f, err
	}
	if f.ArchiveSize, err = r.ReadU32(); err != nil {
		return f, err
	}
	if f.FileID, err = r.ReadI32(); err != nil {
		return f, err
	}
	if f.ExternalFile, err = ref.ReadSingle(r, true, decodeNullString); err != nil {
		return f, err
	}
	if f.FilePositions, err = ref.ReadSingle(r, false, decodeFilePositionTable); err != nil {
		return f, err
	}
	return f, nil
}

// Positions returns the decoded (group_index, item_index) locators, or an
// empty slice if this file has no payload.
func (f FileInfo) Positions() []FilePosition {
	items := f.FilePositions.Value.Items
	out := make([]FilePosition, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

// GroupEntry is one entry of a group's entries table. file_offset and
// archive_offset are retained as raw offsets from their enclosing
// GroupInfo's file_base/archive_base, never eagerly resolved into byte
// arrays.
type GroupEntry struct {
	FileID        TypedId
	FileOffset    uint32
	FileSize      uint32
	ArchiveOffset uint32
	ArchiveSize   uint32
	Reserved      uint32
}

func readGroupEntry(r *binstream.Reader) (GroupEntry, error) {
	var e GroupEntry
	var err error
	if e.FileID, err = readTypedId(r); err != nil {
		return e, err
	}
	if e.FileOffset, err = r.ReadU32(); err != nil {
		return e, err
	}
	if e.FileSize, err = r.ReadU32(); err != nil {
		return e, err
	}
	if e.ArchiveOffset, err = r.ReadU32(); err != nil {
		return e, err
	}
	if e.ArchiveSize, err = r.ReadU32(); err != nil {
		return e, err
	}
	if e.Reserved, err = r.ReadU32(); err != nil {
		return e, err
	}
	return e, nil
}

func decodeGroupEntryRef(r *binstream.Reader) (ref.Single[GroupEntry], error) {
	return ref.ReadSingle(r, false, readGroupEntry)
}

func decodeGroupEntryTable(r *binstream.Reader) (ref.Table[ref.Single[GroupEntry]], error) {
	return ref.ReadTable(r, decodeGroupEntryRef)
}

// GroupInfo is one entry of the INFO block's group table.
// file_base and archive_base are the origins GroupEntry's file_offset and
// archive_offset are measured against, in file coordinates.
type GroupInfo struct {
	StringID     TypedId
	GroupID      int32
	ExternalFile ref.Single[string]
	FileBase     uint32
	TotalSize    uint32
	ArchiveBase  uint32
	ArchiveSize  uint32
	Entries      ref.Single[ref.Table[ref.Single[GroupEntry]]]
}

func readGroupInfo(r *binstream.Reader) (GroupInfo, error) {
	var g GroupInfo
	var err error
	if g.StringID, err = readTypedId(r); err != nil {
		return g, err
	}
	if g.GroupID, err = r.ReadI32(); err != nil {
		return g, err
	}
	if g.ExternalFile, err = ref.ReadSingle(r, true, decodeNullString); err != nil {
		return g, err
	}
	if g.FileBase, err = r.ReadU32(); err != nil {
		return g, err
	}
	if g.TotalSize, err = r.ReadU32(); err != nil {
		return g, err
	}
	if g.ArchiveBase, err = r.ReadU32(); err != nil {
		return g, err
	}
	if g.ArchiveSize, err = r.ReadU32(); err != nil {
		return g, err
	}
	if g.Entries, err = ref.ReadSingle(r, false, decodeGroupEntryTable); err != nil {
		return g, err
	}
	return g, nil
}

// Entry returns the group's i'th entry, or an IndexOutOfBounds error. The
// byte ranges it describes come from FileRange and ArchiveRange.
func (g GroupInfo) Entry(i int) (GroupEntry, error) {
	single, err := g.Entries.Value.At(i)
	if err != nil {
		return GroupEntry{}, err
	}
	return single.Value, nil
}

// FileRange returns the file-coordinate (offset, length) of entry e's bytes:
// g.FileBase plus e.FileOffset, and e.FileSize.
func (g GroupInfo) FileRange(e GroupEntry) (int64, int64) {
	return int64(g.FileBase) + int64(e.FileOffset), int64(e.FileSize)
}

// ArchiveRange returns the (offset, length) of entry e's archive bytes:
// g.ArchiveBase plus e.ArchiveOffset, and e.ArchiveSize. Whether an archive_offset of 0 always
// means "absent" is left undecided here; callers that care should
// additionally check e.ArchiveSize.
func (g GroupInfo) ArchiveRange(e GroupEntry) (int64, int64) {
	return int64(g.ArchiveBase) + int64(e.ArchiveOffset), int64(e.ArchiveSize)
}

// SoundArchiveInfo carries the archive-wide resource limits.
type SoundArchiveInfo struct {
	MaxSequences      uint16
	MaxSeqTracks       uint16
	MaxStreams        uint16
	MaxStreamTracks    uint16
	MaxStreamChannels uint16
	MaxWaves          uint16
	MaxWaveTracks      uint16
	Pad               uint16
	Reserved          uint32
}

func readSoundArchiveInfo(r *binstream.Reader) (SoundArchiveInfo, error) {
	var s SoundArchiveInfo
	var err error
	if s.MaxSequences, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxSeqTracks, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxStreams, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxStreamTracks, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxStreamChannels, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxWaves, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.MaxWaveTracks, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.Pad, err = r.ReadU16(); err != nil {
		return s, err
	}
	if s.Reserved, err = r.ReadU32(); err != nil {
		return s, err
	}
	return s, nil
}

// Info is the decoded INFO block.
type Info struct {
	Header           BlockHeader
	SoundTable       ref.Table[ref.Single[SoundInfo]]
	BankTable        ref.Table[ref.Single[BankInfo]]
	PlayerTable      ref.Table[ref.Single[PlayerInfo]]
	FileTable        ref.Table[ref.Single[FileInfo]]
	GroupTable       ref.Table[ref.Single[GroupInfo]]
	SoundArchiveInfo SoundArchiveInfo
}

func decodeSoundInfoRef(r *binstream.Reader) (ref.Single[SoundInfo], error) {
	return ref.ReadSingle(r, false, readSoundInfo)
}
func decodeSoundTable(r *binstream.Reader) (ref.Table[ref.Single[SoundInfo]], error) {
	return ref.ReadTable(r, decodeSoundInfoRef)
}

func decodeBankInfoRef(r *binstream.Reader) (ref.Single[BankInfo], error) {
	return ref.ReadSingle(r, false, readBankInfo)
}
func decodeBankTable(r *binstream.Reader) (ref.Table[ref.Single[BankInfo]], error) {
	return ref.ReadTable(r, decodeBankInfoRef)
}

func decodePlayerInfoRef(r *binstream.Reader) (ref.Single[PlayerInfo], error) {
	return ref.ReadSingle(r, false, readPlayerInfo)
}
func decodePlayerTable(r *binstream.Reader) (ref.Table[ref.Single[PlayerInfo]], error) {
	return ref.ReadTable(r, decodePlayerInfoRef)
}

func decodeFileInfoRef(r *binstream.Reader) (ref.Single[FileInfo], error) {
	return ref.ReadSingle(r, false, readFileInfo)
}
func decodeFileTable(r *binstream.Reader) (ref.Table[ref.Single[FileInfo]], error) {
	return ref.ReadTable(r, decodeFileInfoRef)
}

func decodeGroupInfoRef(r *binstream.Reader) (ref.Single[GroupInfo], error) {
	return ref.ReadSingle(r, false, readGroupInfo)
}
func decodeGroupTable(r *binstream.Reader) (ref.Table[ref.Single[GroupInfo]], error) {
	return ref.ReadTable(r, decodeGroupInfoRef)
}

// infoAlignment is the boundary the sixth (SoundArchiveInfo) reference's
// target is aligned up to before it is decoded: the final reference is
// aligned to the next 0x20 boundary before its target.
const infoAlignment = 0x20

func alignUp(v int64, align int64) int64 {
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// readSoundArchiveInfoRef reads the INFO block's sixth and final reference:
// a single-type reference to SoundArchiveInfo whose target address is
// rounded up to the next infoAlignment boundary before it is decoded.
func readSoundArchiveInfoRef(r *binstream.Reader) (SoundArchiveInfo, error) {
	env, err := ref.ReadEnvelope(r)
	if err != nil {
		return SoundArchiveInfo{}, err
	}
	if env.TypeTag != 0 {
		dbg.Println("block.readSoundArchiveInfoRef: non-zero type_tag:", env.TypeTag)
	}
	off, err := r.ReadU32()
	if err != nil {
		return SoundArchiveInfo{}, err
	}
	if !env.IsRelative && off == 0 {
		return SoundArchiveInfo{}, errs.New(errs.NullAbsoluteReference, "sound_archive_info reference is null")
	}
	pos, err := r.Position()
	if err != nil {
		return SoundArchiveInfo{}, err
	}

	decode := func() (SoundArchiveInfo, error) {
		target := r.Origin() + int64(off)
		target = alignUp(target, infoAlignment)
		if err := r.SeekAbsolute(target); err != nil {
			return SoundArchiveInfo{}, err
		}
		return readSoundArchiveInfo(r)
	}

	var out SoundArchiveInfo
	if env.IsRelative {
		out, err = decode()
	} else {
		err = r.WithOrigin(0, func() error {
			var innerErr error
			out, innerErr = decode()
			return innerErr
		})
	}
	if err != nil {
		return SoundArchiveInfo{}, err
	}
	if err := r.SeekAbsolute(pos); err != nil {
		return SoundArchiveInfo{}, err
	}
	return out, nil
}

// ReadInfo decodes the INFO block body: five reference tables followed by
// one direct reference, all measured from bodyOrigin.
func ReadInfo(r *binstream.Reader, bodyOrigin int64, hdr BlockHeader) (Info, error) {
	var info Info
	info.Header = hdr
	err := r.WithOrigin(bodyOrigin, func() error {
		if err := r.SeekAbsolute(bodyOrigin); err != nil {
			return err
		}
		soundTable, err := ref.ReadSingle(r, false, decodeSoundTable)
		if err != nil {
			return err
		}
		info.SoundTable = soundTable.Value

		bankTable, err := ref.ReadSingle(r, false, decodeBankTable)
		if err != nil {
			return err
		}
		info.BankTable = bankTable.Value

		playerTable, err := ref.ReadSingle(r, false, decodePlayerTable)
		if err != nil {
			return err
		}
		info.PlayerTable = playerTable.Value

		fileTable, err := ref.ReadSingle(r, false, decodeFileTable)
		if err != nil {
			return err
		}
		info.FileTable = fileTable.Value

		groupTable, err := ref.ReadSingle(r, false, decodeGroupTable)
		if err != nil {
			return err
		}
		info.GroupTable = groupTable.Value

		info.SoundArchiveInfo, err = readSoundArchiveInfoRef(r)
		return err
	})
	if err != nil {
		return Info{}, err
	}
	return info, nil
}
