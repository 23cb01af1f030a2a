package clipseq

// Scene is a set of clips launched together.
type Scene struct {
	ID    SceneID
	Clips []ClipID
	Tempo float64 // when positive, becomes the base BPM when the scene launches
}
