package tetrapose

import "fmt"

// Library is the owning arena for loaded animation data: Hierarchies, the HierarchyPoseGroups of key poses over them, and the
// ClipPools that play those poses back, each stored by name. HierarchyStates and ClipControllers created from a Library only
// borrow its data, so the Library has to outlive them.
type Library struct {
	Hierarchies map[string]*Hierarchy          // A Map of Hierarchies to their names
	PoseGroups  map[string]*HierarchyPoseGroup // A Map of pose groups to their names
	ClipPools   map[string]*ClipPool           // A Map of ClipPools to their names
}

// NewLibrary creates a new Library.
func NewLibrary() *Library {
	return &Library{
		Hierarchies: map[string]*Hierarchy{},
		PoseGroups:  map[string]*HierarchyPoseGroup{},
		ClipPools:   map[string]*ClipPool{},
	}
}

// AddSkeleton stores a pose group (and its Hierarchy) along with the clip pool that plays it back under the given name.
// pool may be nil for a skeleton without animation.
func (lib *Library) AddSkeleton(name string, group *HierarchyPoseGroup, pool *ClipPool) error {

	if _, exists := lib.PoseGroups[name]; exists {
		return fmt.Errorf("%w: library already has a skeleton named %q", ErrConfiguration, name)
	}

	lib.Hierarchies[name] = group.Hierarchy
	lib.PoseGroups[name] = group
	if pool != nil {
		lib.ClipPools[name] = pool
	}
	return nil

}

// SkeletonNames returns the names of every skeleton in the Library.
func (lib *Library) SkeletonNames() []string {
	names := make([]string, 0, len(lib.PoseGroups))
	for name := range lib.PoseGroups {
		names = append(names, name)
	}
	return names
}

// FindHierarchy returns the Hierarchy with the given name, or nil.
func (lib *Library) FindHierarchy(name string) *Hierarchy {
	return lib.Hierarchies[name]
}

// FindPoseGroup returns the HierarchyPoseGroup with the given name, or nil.
func (lib *Library) FindPoseGroup(name string) *HierarchyPoseGroup {
	return lib.PoseGroups[name]
}

// FindClipPool returns the ClipPool with the given name, or nil.
func (lib *Library) FindClipPool(name string) *ClipPool {
	return lib.ClipPools[name]
}

// NewState creates a HierarchyState over the named skeleton with its LocalSpace set to the base pose and its kinematics solved.
// This is what bind-to-current skinning transforms are measured against.
func (lib *Library) NewState(skeleton string) (*HierarchyState, error) {

	group := lib.FindPoseGroup(skeleton)
	if group == nil {
		return nil, fmt.Errorf("%w: no skeleton named %q", ErrConfiguration, skeleton)
	}

	state := NewHierarchyState(group.Hierarchy)
	if err := state.SetLocalFromSample(group); err != nil {
		return nil, err
	}

	SolveForward(state)
	UpdateObjectInverse(state)
	return state, nil

}

// NewClipController creates a ClipController over the named skeleton's clip pool, starting on the named clip.
func (lib *Library) NewClipController(skeleton, controllerName, clipName string) (*ClipController, error) {

	pool := lib.FindClipPool(skeleton)
	if pool == nil {
		return nil, fmt.Errorf("%w: no clip pool for skeleton %q", ErrConfiguration, skeleton)
	}

	clip := pool.FindClip(clipName)
	if clip < 0 {
		return nil, fmt.Errorf("%w: skeleton %q has no clip named %q", ErrConfiguration, skeleton, clipName)
	}

	return NewClipController(controllerName, pool, clip)

}
