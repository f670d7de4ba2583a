package scene

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/camera"
	"github.com/Carmen-Shannon/lucent-go/engine/game_object"
	"github.com/Carmen-Shannon/lucent-go/engine/mesh"
	"github.com/Carmen-Shannon/lucent-go/engine/oit"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/material"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline cache keys for the shared transparency pipelines. InitTransparency
// registers all four; RegisterPipelines skips keys that already exist, so
// multiple scenes on one renderer share them.
const (
	accumNaivePipelineKey     = "oit_accum_naive"
	accumHistogramPipelineKey = "oit_accum_histogram"
	cdfBuildPipelineKey       = "oit_cdf_build"
	compositePipelineKey      = "oit_composite"
)

// drawItem is one frame-snapshot entry: an enabled object plus the per-frame
// data the draw phases need. PrepareFrame fills the snapshot; DrawCalls and
// RenderTransparency consume it.
type drawItem struct {
	obj       game_object.GameObject
	model     [16]float32 // world transform built from the object's position/rotation/scale
	viewDepth float32     // distance in front of the camera, used for back-to-front sorting
	visible   bool        // false when frustum culling rejected the object this frame
}

// Scene manages a registry of game objects and drives the per-frame flow:
// PrepareFrame stages the camera and per-object model uniforms, DrawCalls
// renders the opaque set into the main pass, and PrepareTransparency plus
// RenderTransparency run the weighted-blend passes for the transparent set.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the name of the scene
	Name() string

	// SetName sets the name of the scene.
	//
	// Parameters:
	//   - name: the new name of the scene
	SetName(name string)

	// Active returns whether this scene is active for rendering.
	//
	// Returns:
	//   - bool: true if the scene is active
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	//
	// Parameters:
	//   - active: true to activate the scene
	SetActive(active bool)

	// Camera returns the camera attached to this scene.
	//
	// Returns:
	//   - camera.Camera: the attached camera or nil
	Camera() camera.Camera

	// SetCamera attaches a camera to this scene.
	//
	// Parameters:
	//   - cam: the camera to attach
	SetCamera(cam camera.Camera)

	// Renderer returns the renderer attached to this scene.
	//
	// Returns:
	//   - renderer.Renderer: the attached renderer or nil
	Renderer() renderer.Renderer

	// SetRenderer attaches a renderer to this scene.
	//
	// Parameters:
	//   - r: the renderer to attach
	SetRenderer(r renderer.Renderer)

	// Count returns the number of objects in the scene registry.
	//
	// Returns:
	//   - int: the registry size
	Count() int

	// Add registers a game object and initializes its GPU resources: the mesh
	// vertex/index buffers (shared across objects using the same mesh), the
	// object's model uniform provider, and the material's bind group. The render
	// pipeline is registered under the material's pipeline key; objects sharing
	// that key share the pipeline. Objects without an ID are assigned one.
	//
	// Panics if the scene has no renderer, the object has no mesh or material,
	// or either shader is nil.
	//
	// Parameters:
	//   - obj: the object to add (must have a mesh and a material)
	//   - vertexShader: the vertex shader for the object's render pipeline
	//   - fragmentShader: the fragment shader for the object's render pipeline
	//   - pipelineOpts: optional pipeline builder options (blend state, cull mode, ...)
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject, vertexShader, fragmentShader shader.Shader, pipelineOpts ...pipeline.PipelineBuilderOption) uint64

	// Get returns the object with the given ID, or nil if not present.
	//
	// Parameters:
	//   - id: the object ID to look up
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes the object with the given ID from the registry. The
	// object's GPU resources are not released; meshes and materials may be
	// shared with other objects.
	//
	// Parameters:
	//   - id: the object ID to remove
	Remove(id uint64)

	// Clear removes all objects from the registry. Does not release GPU resources.
	Clear()

	// TransparencySettings returns the scene's order-independent transparency
	// settings. Mode and depth-range changes made through it take effect at the
	// next PrepareTransparency call.
	//
	// Returns:
	//   - oit.Settings: the transparency settings
	TransparencySettings() oit.Settings

	// SetTransparencyMode switches the transparency mode. The change is latched
	// by the next PrepareTransparency call, so a switch mid-frame never tears
	// the pass setup. Modes other than ModeInactive require InitTransparency to
	// have been called; until then the scene falls back to sorted alpha
	// blending in the main pass.
	//
	// Parameters:
	//   - mode: the mode to switch to
	SetTransparencyMode(mode oit.Mode)

	// InitTransparency compiles the weighted-blend shaders and registers the
	// accumulation, CDF build, and composite pipelines on the renderer. Call
	// once after NewScene, before the first frame that uses a weighted-blend
	// mode. Panics if the renderer was built with MSAA enabled: the composite
	// pass draws directly onto the single-sample surface and the accumulation
	// pass re-attaches the main depth buffer, neither of which has a resolved
	// multisample source.
	InitTransparency()

	// PrepareFrame updates the camera, integrates object rotation speeds,
	// builds model matrices, culls against the view frustum, and stages all
	// uniform writes in one coalesced submission. Call once per frame before
	// BeginFrame.
	//
	// Parameters:
	//   - deltaTime: seconds elapsed since the previous frame
	PrepareFrame(deltaTime float32)

	// PrepareTransparency latches the transparency mode for this frame and
	// sizes the GPU resources it needs: the accumulation and revealage targets
	// for the weighted-blend modes, plus the histogram buffer, CDF texture, and
	// params uniform for the histogram mode. Leaving the weighted-blend modes
	// releases everything so re-entry starts from freshly zeroed textures. Call
	// once per frame after PrepareFrame and before BeginFrame.
	PrepareTransparency()

	// DrawCalls issues draw calls for the opaque snapshot through each object's
	// material pipeline. When no weighted-blend mode is active the transparent
	// snapshot is also drawn here, sorted back to front for conventional alpha
	// blending. Must be called between Renderer.BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if any draw call fails
	DrawCalls() error

	// RenderTransparency encodes the weighted-blend passes for the transparent
	// snapshot: the accumulation pass over both off-screen targets, the CDF
	// build dispatch in histogram mode, and the composite onto the surface.
	// No-op when the latched mode is inactive or there is nothing transparent
	// to draw. Must be called after DrawCalls, before Renderer.EndFrame.
	//
	// Returns:
	//   - error: an error if any transparency pass fails
	RenderTransparency() error
}

type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool

	registry map[uint64]game_object.GameObject
	nextID   uint64

	cam camera.Camera
	r   renderer.Renderer

	cullingDisabled bool

	// settings carries the requested transparency configuration; activeMode is
	// the mode latched by PrepareTransparency so a SetMode between frames never
	// tears a frame's pass setup.
	settings         oit.Settings
	activeMode       oit.Mode
	transparencyInit bool

	viewState      oit.ViewState
	histogramState oit.HistogramState
	targets        *renderer.TransparencyTargets
	histogram      *renderer.HistogramResources

	// transparencyBGPs are the per-parity providers for the histogram
	// accumulation group: index i binds the revealage texture written at parity
	// 1-i as the previous frame's transmittance. compositeBGPs[i] binds the
	// revealage written at parity i. cdfBGP shares the histogram buffer and
	// params uniform with the accumulation providers.
	transparencyBGPs        [2]bind_group_provider.BindGroupProvider
	compositeBGPs           [2]bind_group_provider.BindGroupProvider
	cdfBGP                  bind_group_provider.BindGroupProvider
	histogramParamsBinding  int

	// Frame snapshot built by PrepareFrame and consumed by the draw phases.
	// Slices are reused across frames.
	itemPool         []drawItem
	opaqueItems      []drawItem
	transparentItems []drawItem

	writePool          []bind_group_provider.BufferWrite       // reusable coalesced buffer write slice
	drawBindGroupsPool []bind_group_provider.BindGroupProvider // reusable bind group slice for draw calls

	// computePool is a bounded set of goroutines reused across frames by the
	// parallel CPU prep phase of PrepareFrame.
	computePool    worker.DynamicWorkerPool
	computeWorkers int // configured count, kept readable after pool start
}

// Compile-time interface check.
var _ Scene = &scene{}

// NewScene builds a Scene around a camera and renderer. The vertex shader is
// scanned for the bind group holding the camera uniform; that group's layout
// initializes the camera's BindGroupProvider on the GPU. All three are
// required and NewScene panics on nil.
//
// Parameters:
//   - name: scene name, used in error messages
//   - cam: camera to attach
//   - r: renderer to attach
//   - vertexShader: shader whose bind groups include the camera uniform
//   - options: configuration options, applied in order
//
// Returns:
//   - Scene: the configured scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, vertexShader shader.Shader, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if vertexShader == nil {
		panic("scene: NewScene requires a non-nil vertex shader for camera BGP init")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		active:             false,
		cam:                cam,
		r:                  r,
		registry:           make(map[uint64]game_object.GameObject),
		nextID:             1,
		computeWorkers:     max(runtime.NumCPU()-1, 1),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 4),
	}

	for _, option := range options {
		option(s)
	}

	if s.settings == nil {
		s.settings = oit.NewSettings()
	}

	// The pool starts after options run so WithComputeWorkers can override
	// the default. A 256-task queue leaves headroom over typical object counts.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	if bgp := cam.BindGroupProvider(); bgp != nil {
		group := cameraGroupIndex(vertexShader)
		if err := r.InitBindGroup(bgp, vertexShader.BindGroupLayoutDescriptor(group), nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init camera bind group: %v", err))
		}
	}

	return s
}

// cameraGroupIndex scans a shader's bind group variable names for the group
// declaring the camera uniform, falling back to group 0.
func cameraGroupIndex(sh shader.Shader) int {
	for i, names := range sh.BindGroupVarNames() {
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), "camera") {
				return i
			}
		}
	}
	return 0
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject, vertexShader, fragmentShader shader.Shader, pipelineOpts ...pipeline.PipelineBuilderOption) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		panic("scene: cannot Add without a Renderer attached")
	}
	msh := obj.Mesh()
	if msh == nil {
		panic("scene: cannot Add a GameObject without a Mesh")
	}
	mat := obj.Material()
	if mat == nil {
		panic("scene: cannot Add a GameObject without a Material")
	}
	if vertexShader == nil || fragmentShader == nil {
		panic("scene: Add requires both a vertex and a fragment shader")
	}

	if obj.ID() == 0 {
		obj.SetID(atomic.AddUint64(&s.nextID, 1) - 1)
	}

	// Register the render pipeline under the material's pipeline key. Objects
	// sharing a key share the pipeline; RegisterPipelines skips existing keys.
	pipelineKey := mat.PipelineKey()
	if pipelineKey == "" {
		pipelineKey = mat.Name()
		if pipelineKey == "" {
			pipelineKey = msh.Name()
		}
		mat.SetPipelineKey(pipelineKey)
	}
	renderOpts := append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader),
	}, pipelineOpts...)
	rp := pipeline.NewPipeline(pipelineKey, pipeline.PipelineTypeRender, renderOpts...)
	if err := s.r.RegisterPipelines(rp); err != nil {
		panic(fmt.Sprintf("scene: failed to register render pipeline %q: %v", pipelineKey, err))
	}

	s.initMeshGPU(msh)
	s.initModelProvider(obj, vertexShader)
	s.initMaterialGPU(mat, fragmentShader)

	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]game_object.GameObject)
	s.opaqueItems = s.opaqueItems[:0]
	s.transparentItems = s.transparentItems[:0]
}

// initMeshGPU uploads the mesh's vertex and index buffers once. Meshes shared
// across objects reuse the same provider and GPU buffers. Caller must hold s.mu.
func (s *scene) initMeshGPU(msh mesh.Mesh) {
	provider := msh.Provider()
	if provider == nil {
		provider = bind_group_provider.NewBindGroupProvider(msh.Name())
		msh.SetProvider(provider)
	}
	if provider.VertexBuffer() != nil {
		return
	}
	if err := s.r.InitMeshBuffers(provider, msh.VertexData(), msh.IndexData(), msh.IndexCount()); err != nil {
		panic(fmt.Sprintf("scene: failed to init mesh buffers for %q: %v", msh.Name(), err))
	}
}

// initModelProvider creates the object's model uniform provider from the vertex
// shader's model group layout. Every vertex shader in the engine declares the
// model group as a single uniform at binding 0; PrepareFrame writes the world
// matrix there each frame. Caller must hold s.mu.
func (s *scene) initModelProvider(obj game_object.GameObject, vertexShader shader.Shader) {
	if obj.ModelProvider() != nil {
		return
	}
	modelGroup := -1
	for _, decl := range vertexShader.Declarations() {
		if decl.Type != shader.AnnotationTypeBindingGroup || decl.Group == nil {
			continue
		}
		if decl.Args[2] == shader.AnnotationArgModelData {
			modelGroup = *decl.Group
			break
		}
	}
	if modelGroup < 0 {
		return
	}
	bgp := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("model_%d", obj.ID()))
	if err := s.r.InitBindGroup(bgp, vertexShader.BindGroupLayoutDescriptor(modelGroup), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init model bind group for object %d: %v", obj.ID(), err))
	}
	obj.SetModelProvider(bgp)
}

// initMaterialGPU creates the material's bind group from the fragment shader's
// material group: the params uniform plus the optional diffuse texture and
// sampler. Materials without a texture binding stay layout-compatible with the
// weighted-blend accumulation shaders, which sample no diffuse texture.
// Materials shared across objects are initialized once. Caller must hold s.mu.
func (s *scene) initMaterialGPU(mat material.Material, fragmentShader shader.Shader) {
	if mat.BindGroupProvider() != nil {
		return
	}

	group := -1
	paramsBinding, textureBinding, samplerBinding := -1, -1, -1
	for _, decl := range fragmentShader.Declarations() {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeBindingGroup:
			if decl.Args[2] == shader.AnnotationArgMaterialParams {
				group = *decl.Group
				paramsBinding = *decl.Binding
			}
		case shader.AnnotationTypeProvider:
			if decl.Args[0] != shader.AnnotationArgMaterial || len(decl.Args) < 2 {
				continue
			}
			group = *decl.Group
			switch decl.Args[1] {
			case shader.AnnotationArgDiffuseTexture:
				textureBinding = *decl.Binding
			case shader.AnnotationArgDiffuseSampler:
				samplerBinding = *decl.Binding
			}
		}
	}
	if group < 0 {
		return
	}

	name := mat.Name()
	if name == "" {
		name = mat.PipelineKey()
	}
	bgp := bind_group_provider.NewBindGroupProvider(name)

	if textureBinding >= 0 {
		staging := mat.DiffuseTexture()
		if staging == nil {
			// Untextured material on a textured pipeline: bind a 1x1 white
			// texel so base color modulation passes through unchanged.
			staging = &common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
		}
		if err := s.r.InitTextureView(bgp, textureBinding, *staging); err != nil {
			panic(fmt.Sprintf("scene: failed to init diffuse texture for material %q: %v", name, err))
		}
	}
	if samplerBinding >= 0 {
		var samplerData common.SamplerStagingData
		if sd := mat.SamplerData(); sd != nil {
			samplerData = *sd
		}
		if err := s.r.InitSampler(bgp, samplerBinding, samplerData); err != nil {
			panic(fmt.Sprintf("scene: failed to init sampler for material %q: %v", name, err))
		}
	}

	if err := s.r.InitBindGroup(bgp, fragmentShader.BindGroupLayoutDescriptor(group), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init material bind group for %q: %v", name, err))
	}
	mat.SetBindGroupProvider(bgp)

	if paramsBinding >= 0 {
		params := material.GPUMaterialParams{BaseColor: mat.BaseColor()}
		s.r.WriteBuffers([]bind_group_provider.BufferWrite{
			{
				Provider: bgp,
				Binding:  paramsBinding,
				Offset:   0,
				Data:     params.Marshal(),
			},
		})
	}
}

func (s *scene) TransparencySettings() oit.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *scene) SetTransparencyMode(mode oit.Mode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.settings.SetMode(mode)
}

func (s *scene) InitTransparency() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		panic("scene: cannot InitTransparency without a Renderer attached")
	}
	if s.r.SampleCount() != renderer.MSAAOff {
		panic("scene: weighted-blend transparency requires MSAA to be disabled; construct the renderer with WithMSAA(renderer.MSAAOff)")
	}
	if s.transparencyInit {
		return
	}

	accumVert := shader.NewShaderFromSource("oit_accum_vert", shader.ShaderTypeVertex, oit.AccumVertexSource)
	naiveFrag := shader.NewShaderFromSource("oit_accum_naive_frag", shader.ShaderTypeFragment, oit.NaiveAccumFragmentSource)
	histogramFrag := shader.NewShaderFromSource("oit_accum_histogram_frag", shader.ShaderTypeFragment, oit.HistogramAccumFragmentSource)
	compositeVert := shader.NewShaderFromSource("oit_composite_vert", shader.ShaderTypeVertex, oit.CompositeVertexSource)
	compositeFrag := shader.NewShaderFromSource("oit_composite_frag", shader.ShaderTypeFragment, oit.CompositeFragmentSource)
	cdfBuild := shader.NewShaderFromSource("oit_cdf_build_comp", shader.ShaderTypeCompute, oit.CDFBuildComputeSource)

	// The CDF build runs one lane per bin, so the configured bin count must
	// fit in the shader's workgroup.
	if lanes := cdfBuild.WorkgroupSize()[0]; s.settings.NumBins() > lanes {
		panic(fmt.Sprintf("scene: transparency settings use %d bins but the CDF build shader has %d lanes per workgroup", s.settings.NumBins(), lanes))
	}

	// Both accumulation pipelines write two off-screen targets: weighted
	// premultiplied color added into the accumulation texture, and per-surface
	// transmittance multiplied into the revealage texture via (Zero, OneMinusSrc).
	// Depth is tested against the opaque scene but never written, and back faces
	// are culled so a closed mesh contributes one surface per pixel.
	accumTargets := []wgpu.ColorTargetState{
		{
			Format: wgpu.TextureFormatRGBA16Float,
			Blend: &wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
		{
			Format: wgpu.TextureFormatR8Unorm,
			Blend: &wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOneMinusSrc, Operation: wgpu.BlendOperationAdd},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOneMinusSrc, Operation: wgpu.BlendOperationAdd},
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}

	naivePipeline := pipeline.NewPipeline(accumNaivePipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(accumVert),
		pipeline.WithFragmentShader(naiveFrag),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithColorTargets(accumTargets...),
	)
	histogramPipeline := pipeline.NewPipeline(accumHistogramPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(accumVert),
		pipeline.WithFragmentShader(histogramFrag),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithColorTargets(accumTargets...),
	)

	// The composite draws one fullscreen triangle onto the surface with
	// premultiplied alpha and no depth attachment.
	compositePipeline := pipeline.NewPipeline(compositePipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(compositeVert),
		pipeline.WithFragmentShader(compositeFrag),
		pipeline.WithDepthStencilDisabled(),
		pipeline.WithBlendEnabled(true),
		pipeline.WithBlendState(&wgpu.BlendState{
			Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
			Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		}),
	)

	cdfPipeline := pipeline.NewPipeline(cdfBuildPipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(cdfBuild),
	)

	if err := s.r.RegisterPipelines(naivePipeline, histogramPipeline, compositePipeline, cdfPipeline); err != nil {
		panic(fmt.Sprintf("scene: failed to register transparency pipelines: %v", err))
	}

	s.transparencyInit = true
}

func (s *scene) PrepareFrame(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return
	}

	// Snapshot the camera and write its uniform to the GPU once per frame.
	var view [16]float32
	var frustum common.Frustum
	hasFrustum := false
	if s.cam != nil {
		st := s.cam.Frame()
		view = st.View
		if camBGP := s.cam.BindGroupProvider(); camBGP != nil {
			camUniform := camera.GPUCameraUniform{
				ViewProj:       st.ViewProjection,
				View:           st.View,
				CameraPosition: st.Position,
			}
			s.r.WriteBuffers([]bind_group_provider.BufferWrite{
				{
					Provider: camBGP,
					Binding:  0,
					Offset:   0,
					Data:     camUniform.Marshal(),
				},
			})
		}

		if !s.cullingDisabled {
			frustum = common.ExtractFrustumFromMatrix(st.ViewProjection[:])
			hasFrustum = true
		}
	}

	// Snapshot the enabled objects. The scratch slice is reused across frames.
	items := s.itemPool[:0]
	for _, obj := range s.registry {
		if !obj.Enabled() || obj.Mesh() == nil || obj.Material() == nil {
			continue
		}
		items = append(items, drawItem{obj: obj})
	}
	s.itemPool = items

	// Phase 1: parallel CPU prep. Integrate rotation speeds, build model
	// matrices, compute view depths, and cull against the frustum. Work is
	// chunked across the compute pool; a WaitGroup provides the per-frame
	// barrier since pool.Wait() blocks until workers idle-exit which is
	// unsuitable for frame-rate workloads.
	if len(items) > 0 {
		chunk := (len(items) + s.computeWorkers - 1) / s.computeWorkers
		var wg sync.WaitGroup
		taskID := 0
		for start := 0; start < len(items); start += chunk {
			end := min(start+chunk, len(items))
			batch := items[start:end]
			wg.Add(1)
			id := taskID
			taskID++
			s.computePool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					for i := range batch {
						it := &batch[i]
						pos, scale, rot, rotSpeed := it.obj.TransformData()
						if rotSpeed != [3]float32{} {
							rot[0] += rotSpeed[0] * deltaTime
							rot[1] += rotSpeed[1] * deltaTime
							rot[2] += rotSpeed[2] * deltaTime
							it.obj.SetRotation(rot[0], rot[1], rot[2])
						}
						common.BuildModelMatrix(it.model[:],
							pos[0], pos[1], pos[2],
							rot[0], rot[1], rot[2],
							scale[0], scale[1], scale[2])
						it.viewDepth = viewSpaceDepth(view, pos[0], pos[1], pos[2])
						it.visible = true
						if hasFrustum {
							radius := it.obj.Mesh().BoundingRadius() * max(scale[0], scale[1], scale[2])
							it.visible = frustum.IntersectsSphere(pos[0], pos[1], pos[2], radius)
						}
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	// Phase 2: partition the snapshot into opaque and transparent sets and
	// coalesce the model uniform writes into a single submission. This reduces
	// renderer mutex acquisitions from N to 1 for writes.
	opaque := s.opaqueItems[:0]
	transparent := s.transparentItems[:0]
	allWrites := s.writePool[:0]
	for i := range items {
		it := &items[i]
		if !it.visible {
			continue
		}
		if it.obj.ModelProvider() != nil {
			md := mesh.GPUModelData{Model: it.model}
			allWrites = append(allWrites, bind_group_provider.BufferWrite{
				Provider: it.obj.ModelProvider(),
				Binding:  0, // model group carries a single uniform at binding 0
				Offset:   0,
				Data:     md.Marshal(),
			})
		}
		if it.obj.Material().Transparent() {
			transparent = append(transparent, *it)
		} else {
			opaque = append(opaque, *it)
		}
	}
	s.opaqueItems = opaque
	s.transparentItems = transparent
	s.writePool = allWrites

	// Transparent items are consumed back to front: the main-pass fallback
	// needs that order for conventional alpha blending, and the accumulation
	// pass keeps it so floating-point accumulation stays deterministic across
	// frames.
	sortBackToFront(s.transparentItems)

	if len(allWrites) > 0 {
		s.r.WriteBuffers(allWrites)
	}
}

func (s *scene) PrepareTransparency() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return
	}

	mode := s.settings.Mode()
	if !s.transparencyInit {
		mode = oit.ModeInactive
	}

	// Leaving the weighted-blend modes releases every transparency resource so
	// re-entry starts from freshly zeroed textures and buffers.
	if !mode.UsesWeightedBlend() {
		s.releaseTransparencyResources()
		s.activeMode = mode
		return
	}

	width, height := s.r.SurfaceSize()
	targetsChanged := false
	switch s.viewState.Prepare(width, height) {
	case oit.ViewActionSkip:
		s.activeMode = mode
		return
	case oit.ViewActionCreate, oit.ViewActionRecreate:
		if s.targets != nil {
			s.targets.Release()
		}
		targets, err := s.r.CreateTransparencyTargets(width, height)
		if err != nil {
			panic(fmt.Sprintf("scene: failed to create transparency targets: %v", err))
		}
		s.targets = targets
		targetsChanged = true
	case oit.ViewActionKeep:
	}

	if targetsChanged {
		s.buildCompositeBindGroups()
	}

	if mode.UsesHistogram() {
		tileCountX, tileCountY := oit.TileCounts(width, height, s.settings.TileSize())
		histogramChanged := s.histogramState.Prepare(tileCountX, tileCountY, s.settings.NumBins())
		if histogramChanged {
			if s.histogram != nil {
				s.histogram.Release()
			}
			histogram, err := s.r.CreateHistogramResources(tileCountX, tileCountY, s.settings.NumBins())
			if err != nil {
				panic(fmt.Sprintf("scene: failed to create histogram resources: %v", err))
			}
			s.histogram = histogram
		}
		if targetsChanged || histogramChanged || s.transparencyBGPs[0] == nil {
			s.buildTransparencyBindGroups()
		}

		// MaxDepth may change between frames and the uniform is 32 bytes, so
		// rewrite it unconditionally.
		if s.transparencyBGPs[0] != nil {
			params := oit.GPUHistogramParams{
				TileCountX: tileCountX,
				TileCountY: tileCountY,
				NumBins:    s.settings.NumBins(),
				TileSize:   s.settings.TileSize(),
				MaxDepth:   s.settings.MaxDepth(),
			}
			s.r.WriteBuffers([]bind_group_provider.BufferWrite{
				{
					Provider: s.transparencyBGPs[0],
					Binding:  s.histogramParamsBinding,
					Offset:   0,
					Data:     params.Marshal(),
				},
			})
		}
	} else if s.histogramState.Created() {
		s.releaseHistogramResources()
	}

	s.activeMode = mode
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return fmt.Errorf("scene %q has no renderer attached", s.name)
	}

	for i := range s.opaqueItems {
		if err := s.drawItemCall(&s.opaqueItems[i]); err != nil {
			return err
		}
	}

	// Without a weighted-blend mode the transparent set renders in the main
	// pass through each object's own pipeline. PrepareFrame sorted it back to
	// front so conventional alpha blending composes in depth order.
	if !s.activeMode.UsesWeightedBlend() {
		for i := range s.transparentItems {
			if err := s.drawItemCall(&s.transparentItems[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

// drawItemCall issues one draw through the object's material pipeline, building
// the bind group list from the pipeline's shader declarations. Caller must hold
// at least a read lock.
func (s *scene) drawItemCall(it *drawItem) error {
	mat := it.obj.Material()
	pipelineKey := mat.PipelineKey()
	if pipelineKey == "" {
		return nil
	}
	rp := s.r.Pipeline(pipelineKey)
	if rp == nil {
		return nil
	}
	vertShader := rp.Shader(shader.ShaderTypeVertex)
	if vertShader == nil {
		return nil
	}
	meshProvider := it.obj.Mesh().Provider()
	if meshProvider == nil {
		return nil
	}

	allDecls := vertShader.Declarations()
	if fragShader := rp.Shader(shader.ShaderTypeFragment); fragShader != nil {
		allDecls = append(allDecls[:len(allDecls):len(allDecls)], fragShader.Declarations()...)
	}

	bindGroups, ok := s.resolveBindGroups(allDecls, it.obj, nil)
	if !ok {
		return nil
	}

	if err := s.r.DrawCall(pipelineKey, meshProvider, 1, bindGroups); err != nil {
		return fmt.Errorf("draw call failed for object %d in scene %q: %w", it.obj.ID(), s.name, err)
	}
	return nil
}

func (s *scene) RenderTransparency() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return fmt.Errorf("scene %q has no renderer attached", s.name)
	}
	if !s.activeMode.UsesWeightedBlend() || s.targets == nil {
		return nil
	}
	if len(s.transparentItems) == 0 {
		// Nothing accumulated means nothing to composite; skipping the passes
		// entirely leaves the opaque frame untouched.
		return nil
	}

	accumKey := accumNaivePipelineKey
	var transparencyBGP bind_group_provider.BindGroupProvider
	if s.activeMode.UsesHistogram() {
		accumKey = accumHistogramPipelineKey
		transparencyBGP = s.transparencyBGPs[s.viewState.FrameIndex()]
		if transparencyBGP == nil || s.histogram == nil {
			return nil
		}
	}

	rp := s.r.Pipeline(accumKey)
	if rp == nil {
		return fmt.Errorf("scene %q transparency pipelines not registered; call InitTransparency first", s.name)
	}
	allDecls := rp.Shader(shader.ShaderTypeVertex).Declarations()
	if fragShader := rp.Shader(shader.ShaderTypeFragment); fragShader != nil {
		allDecls = append(allDecls[:len(allDecls):len(allDecls)], fragShader.Declarations()...)
	}

	// Items arrive back to front from PrepareFrame. The weighted blend itself
	// is order-independent; the sorted order only pins the floating-point
	// accumulation order.
	frameIndex := s.viewState.FrameIndex()
	s.r.BeginTransparencyAccumPass(s.targets.AccumView, s.targets.RevealageViews[frameIndex])
	for i := range s.transparentItems {
		it := &s.transparentItems[i]
		meshProvider := it.obj.Mesh().Provider()
		if meshProvider == nil {
			continue
		}
		bindGroups, ok := s.resolveBindGroups(allDecls, it.obj, transparencyBGP)
		if !ok {
			log.Printf("scene %q: object %d missing a bind group the transparency pipeline declares, skipping", s.name, it.obj.ID())
			continue
		}
		if err := s.r.TransparencyDrawCall(accumKey, meshProvider, 1, bindGroups); err != nil {
			s.r.EndTransparencyAccumPass()
			return fmt.Errorf("transparency draw failed for object %d in scene %q: %w", it.obj.ID(), s.name, err)
		}
	}
	s.r.EndTransparencyAccumPass()

	// Fold this frame's histogram counts into the CDF texture. The dispatch
	// also re-zeroes the counts for the next frame.
	if s.activeMode.UsesHistogram() {
		tileCountX, tileCountY, _ := s.histogramState.Geometry()
		s.r.DispatchTransparencyCompute(cdfBuildPipelineKey, s.cdfBGP, oit.CDFDispatch(tileCountX, tileCountY))
	}

	s.r.BeginTransparencyCompositePass()
	if err := s.r.TransparencyCompositeDraw(compositePipelineKey, []bind_group_provider.BindGroupProvider{s.compositeBGPs[frameIndex]}); err != nil {
		return fmt.Errorf("transparency composite failed in scene %q: %w", s.name, err)
	}

	return nil
}

// resolveBindGroups maps each bind group declared by a pipeline's shaders to
// its provider: the camera uniform, the object's model uniform, the material,
// or the transparency resources. Groups are iterated in index order so
// bindGroups[i] maps to @group(i). Returns false when any declared group has
// no provider. Caller must hold at least a read lock.
func (s *scene) resolveBindGroups(decls []shader.Annotation, obj game_object.GameObject, transparencyBGP bind_group_provider.BindGroupProvider) ([]bind_group_provider.BindGroupProvider, bool) {
	maxGroup := -1
	groupProviders := make(map[int]bind_group_provider.BindGroupProvider)
	for _, decl := range decls {
		if decl.Group == nil {
			continue
		}
		g := *decl.Group
		if g > maxGroup {
			maxGroup = g
		}
		if _, exists := groupProviders[g]; exists {
			continue
		}

		var provider bind_group_provider.BindGroupProvider
		switch decl.Type {
		case shader.AnnotationTypeProvider:
			switch decl.Args[0] {
			case shader.AnnotationArgCamera:
				if s.cam != nil {
					provider = s.cam.BindGroupProvider()
				}
			case shader.AnnotationArgMaterial:
				provider = obj.Material().BindGroupProvider()
			case shader.AnnotationArgTransparency:
				provider = transparencyBGP
			}
		case shader.AnnotationTypeBindingGroup:
			switch decl.Args[2] {
			case shader.AnnotationArgCamera:
				if s.cam != nil {
					provider = s.cam.BindGroupProvider()
				}
			case shader.AnnotationArgModelData:
				provider = obj.ModelProvider()
			case shader.AnnotationArgMaterialParams:
				provider = obj.Material().BindGroupProvider()
			case shader.AnnotationArgHistogramParams:
				provider = transparencyBGP
			}
		}

		if provider != nil {
			groupProviders[g] = provider
		}
	}

	bindGroups := s.drawBindGroupsPool[:0]
	for g := 0; g <= maxGroup; g++ {
		provider, ok := groupProviders[g]
		if !ok || provider == nil {
			return nil, false
		}
		bindGroups = append(bindGroups, provider)
	}
	return bindGroups, true
}

// buildCompositeBindGroups recreates the two composite providers against the
// current transparency targets. compositeBGPs[i] binds the revealage texture
// written at frame parity i. Caller must hold s.mu.
func (s *scene) buildCompositeBindGroups() {
	rp := s.r.Pipeline(compositePipelineKey)
	if rp == nil || s.targets == nil {
		return
	}
	fragShader := rp.Shader(shader.ShaderTypeFragment)
	if fragShader == nil {
		return
	}

	accumBinding, revealageBinding := 0, 1
	for _, decl := range fragShader.Declarations() {
		if decl.Type != shader.AnnotationTypeProvider || decl.Binding == nil || len(decl.Args) < 2 {
			continue
		}
		switch decl.Args[1] {
		case shader.AnnotationArgAccumTexture:
			accumBinding = *decl.Binding
		case shader.AnnotationArgRevealageTexture:
			revealageBinding = *decl.Binding
		}
	}
	desc := fragShader.BindGroupLayoutDescriptor(0)

	for i := range 2 {
		releaseProvider(s.compositeBGPs[i])
		bgp := bind_group_provider.NewBindGroupProvider(
			fmt.Sprintf("%s_oit_composite_%d", s.name, i),
			bind_group_provider.WithSharedTextureView(accumBinding, s.targets.AccumView),
			bind_group_provider.WithSharedTextureView(revealageBinding, s.targets.RevealageViews[i]),
		)
		if err := s.r.InitBindGroup(bgp, desc, nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init composite bind group: %v", err))
		}
		s.compositeBGPs[i] = bgp
	}
}

// buildTransparencyBindGroups recreates the per-parity histogram accumulation
// providers and the CDF build provider against the current targets and
// histogram resources. The params uniform is created once on the first
// provider and shared with the second and with the CDF build group. Caller
// must hold s.mu.
func (s *scene) buildTransparencyBindGroups() {
	rp := s.r.Pipeline(accumHistogramPipelineKey)
	if rp == nil || s.targets == nil || s.histogram == nil {
		return
	}
	fragShader := rp.Shader(shader.ShaderTypeFragment)
	if fragShader == nil {
		return
	}

	// Resolve the transparency group and its bindings from the shader
	// declarations rather than hardcoding them.
	group := -1
	binsBinding, cdfTextureBinding, cdfSamplerBinding, historyBinding, paramsBinding := -1, -1, -1, -1, -1
	for _, decl := range fragShader.Declarations() {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeProvider:
			if decl.Args[0] != shader.AnnotationArgTransparency || len(decl.Args) < 2 {
				continue
			}
			group = *decl.Group
			switch decl.Args[1] {
			case shader.AnnotationArgHistogramBins:
				binsBinding = *decl.Binding
			case shader.AnnotationArgCDFTexture:
				cdfTextureBinding = *decl.Binding
			case shader.AnnotationArgCDFSampler:
				cdfSamplerBinding = *decl.Binding
			case shader.AnnotationArgRevealageHistory:
				historyBinding = *decl.Binding
			}
		case shader.AnnotationTypeBindingGroup:
			if decl.Args[2] == shader.AnnotationArgHistogramParams {
				group = *decl.Group
				paramsBinding = *decl.Binding
			}
		}
	}
	if group < 0 || paramsBinding < 0 {
		return
	}
	desc := fragShader.BindGroupLayoutDescriptor(group)

	releaseProvider(s.transparencyBGPs[0])
	releaseProvider(s.transparencyBGPs[1])

	for i := range 2 {
		bgp := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_oit_transparency_%d", s.name, i))
		if binsBinding >= 0 {
			bgp.SetBuffer(binsBinding, s.histogram.HistogramBuffer)
		}
		if cdfTextureBinding >= 0 {
			bgp.SetTextureView(cdfTextureBinding, s.histogram.CDFView)
		}
		if cdfSamplerBinding >= 0 {
			bgp.SetSampler(cdfSamplerBinding, s.histogram.CDFSampler)
		}
		if historyBinding >= 0 {
			// The history view is the revealage texture written by the opposite
			// parity, holding the previous frame's total transmittance.
			bgp.SetTextureView(historyBinding, s.targets.RevealageViews[1-i])
		}
		if i == 1 {
			bgp.SetBuffer(paramsBinding, s.transparencyBGPs[0].Buffer(paramsBinding))
		}
		if err := s.r.InitBindGroup(bgp, desc, nil, nil); err != nil {
			panic(fmt.Sprintf("scene: failed to init transparency bind group: %v", err))
		}
		s.transparencyBGPs[i] = bgp
	}
	s.histogramParamsBinding = paramsBinding

	s.buildCDFBindGroup()
}

// buildCDFBindGroup recreates the CDF build compute provider, sharing the
// histogram buffer and params uniform with the accumulation providers. Caller
// must hold s.mu.
func (s *scene) buildCDFBindGroup() {
	rp := s.r.Pipeline(cdfBuildPipelineKey)
	if rp == nil || s.histogram == nil || s.transparencyBGPs[0] == nil {
		return
	}
	cdfShader := rp.Shader(shader.ShaderTypeCompute)
	if cdfShader == nil {
		return
	}

	binsBinding, cdfTextureBinding, paramsBinding := -1, -1, -1
	for _, decl := range cdfShader.Declarations() {
		if decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeProvider:
			if decl.Args[0] != shader.AnnotationArgTransparency || len(decl.Args) < 2 {
				continue
			}
			switch decl.Args[1] {
			case shader.AnnotationArgHistogramBins:
				binsBinding = *decl.Binding
			case shader.AnnotationArgCDFTexture:
				cdfTextureBinding = *decl.Binding
			}
		case shader.AnnotationTypeBindingGroup:
			if decl.Args[2] == shader.AnnotationArgHistogramParams {
				paramsBinding = *decl.Binding
			}
		}
	}

	releaseProvider(s.cdfBGP)
	bgp := bind_group_provider.NewBindGroupProvider(s.name + "_oit_cdf")
	if binsBinding >= 0 {
		bgp.SetBuffer(binsBinding, s.histogram.HistogramBuffer)
	}
	if cdfTextureBinding >= 0 {
		bgp.SetTextureView(cdfTextureBinding, s.histogram.CDFView)
	}
	if paramsBinding >= 0 {
		bgp.SetBuffer(paramsBinding, s.transparencyBGPs[0].Buffer(s.histogramParamsBinding))
	}
	if err := s.r.InitBindGroup(bgp, cdfShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init CDF build bind group: %v", err))
	}
	s.cdfBGP = bgp
}

// releaseTransparencyResources tears down every transparency resource: the
// histogram chain, the composite providers, and the render targets. Caller
// must hold s.mu.
func (s *scene) releaseTransparencyResources() {
	s.releaseHistogramResources()
	for i := range 2 {
		releaseProvider(s.compositeBGPs[i])
		s.compositeBGPs[i] = nil
	}
	if s.targets != nil {
		s.targets.Release()
		s.targets = nil
	}
	s.viewState.Reset()
}

// releaseHistogramResources tears down the histogram buffer, CDF texture, and
// the providers referencing them. Caller must hold s.mu.
func (s *scene) releaseHistogramResources() {
	releaseProvider(s.transparencyBGPs[0])
	releaseProvider(s.transparencyBGPs[1])
	releaseProvider(s.cdfBGP)
	s.transparencyBGPs[0], s.transparencyBGPs[1], s.cdfBGP = nil, nil, nil
	if s.histogram != nil {
		s.histogram.Release()
		s.histogram = nil
	}
	s.histogramState.Reset()
}

// releaseProvider releases a provider's adopted GPU resources, tolerating nil
// between rebuilds. Shared texture views, samplers, and buffers belong to
// TransparencyTargets, HistogramResources, or a sibling provider; the
// provider drops those references and their owners release them.
func releaseProvider(bgp bind_group_provider.BindGroupProvider) {
	if bgp == nil {
		return
	}
	bgp.Release()
}

// sortBackToFront orders draw items by descending view depth so the farthest
// surface renders first. Conventional alpha blending composes correctly only
// in this order.
func sortBackToFront(items []drawItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].viewDepth > items[j].viewDepth
	})
}

// viewSpaceDepth returns the distance of a world-space point in front of the
// camera. The third row of a column-major view matrix holds the camera's
// backward axis, so negating the transformed z gives positive values for
// points the camera faces.
func viewSpaceDepth(view [16]float32, x, y, z float32) float32 {
	return -(view[2]*x + view[6]*y + view[10]*z + view[14])
}
