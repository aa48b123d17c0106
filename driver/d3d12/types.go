// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package d3d12

// Vtable indices.
const (
	debugEnableDebugLayer = 3

	factoryMakeWindowAssociation      = 8
	factoryCreateSwapChainForHwnd     = 15
	factoryEnumAdapterByGpuPreference = 29

	adapterGetDesc1 = 10

	devCreateCommandQueue               = 8
	devCreateCommandAllocator           = 9
	devCreateCommandList                = 12
	devCreateDescriptorHeap             = 14
	devGetDescriptorHandleIncrementSize = 15
	devCreateRenderTargetView           = 20
	devCreateCommittedResource          = 27
	devCreateFence                      = 36
	devGetDeviceRemovedReason           = 37

	queueExecuteCommandLists = 10
	queueSignal              = 14

	allocReset = 8

	fenceGetCompletedValue    = 8
	fenceSetEventOnCompletion = 9

	listClose                 = 9
	listReset                 = 10
	listCopyBufferRegion      = 15
	listResourceBarrier       = 26
	listOMSetRenderTargets    = 46
	listClearRenderTargetView = 48

	heapGetCPUDescriptorHandleForHeapStart = 9

	resMap   = 8
	resUnmap = 9

	iqClearStoredMessages  = 4
	iqGetMessage           = 5
	iqGetNumStoredMessages = 8
	iqSetBreakOnSeverity   = 31

	scPresent                   = 8
	scGetBuffer                 = 9
	scResizeBuffers             = 13
	scGetDesc1                  = 18
	scGetCurrentBackBufferIndex = 36
)

// Enumerations and flags.
const (
	featureLevel12_0 = 0xc000

	dxgiCreateFactoryDebug        = 0x1
	dxgiGpuPreferenceUnspecified  = 0
	dxgiGpuPreferenceMinPower     = 1
	dxgiGpuPreferenceHighPerf     = 2
	dxgiAdapterFlagSoftware       = 0x2
	dxgiMWANoAltEnter             = 0x2
	dxgiUsageRenderTargetOutput   = 0x20
	dxgiScalingNone               = 1
	dxgiSwapEffectFlipDiscard     = 4
	dxgiAlphaModeUnspecified      = 0
	dxgiSwapChainFlagAllowTearing = 0x800
	dxgiPresentDoNotWait          = 0x8
	dxgiPresentAllowTearing       = 0x200

	dxgiFormatUnknown           = 0
	dxgiFormatR16G16B16A16F     = 10
	dxgiFormatR10G10B10A2UNorm  = 24
	dxgiFormatR8G8B8A8UNorm     = 28
	dxgiFormatR8G8B8A8UNormSRGB = 29
	dxgiFormatB8G8R8A8UNorm     = 87
	dxgiFormatB8G8R8A8UNormSRGB = 91

	commandListTypeDirect = 0

	descriptorHeapTypeRTV = 2

	heapTypeDefault  = 1
	heapTypeUpload   = 2
	heapTypeReadback = 3

	resourceDimensionBuffer = 1
	textureLayoutRowMajor   = 1

	resourceStateCommon       = 0
	resourceStateRenderTarget = 0x4
	resourceStateCopyDest     = 0x400
	resourceStateCopySource   = 0x800
	resourceStateGenericRead  = 0xac3

	resourceBarrierTypeTransition  = 0
	resourceBarrierAllSubresources = 0xffffffff
)

type commandQueueDesc struct {
	Type     int32
	Priority int32
	Flags    uint32
	NodeMask uint32
}

type sampleDesc struct {
	Count   uint32
	Quality uint32
}

type swapChainDesc1 struct {
	Width       uint32
	Height      uint32
	Format      uint32
	Stereo      int32
	SampleDesc  sampleDesc
	BufferUsage uint32
	BufferCount uint32
	Scaling     uint32
	SwapEffect  uint32
	AlphaMode   uint32
	Flags       uint32
}

type descriptorHeapDesc struct {
	Type           int32
	NumDescriptors uint32
	Flags          int32
	NodeMask       uint32
}

type heapProperties struct {
	Type                 int32
	CPUPageProperty      int32
	MemoryPoolPreference int32
	CreationNodeMask     uint32
	VisibleNodeMask      uint32
}

type resourceDesc struct {
	Dimension        int32
	Alignment        uint64
	Width            uint64
	Height           uint32
	DepthOrArraySize uint16
	MipLevels        uint16
	Format           uint32
	SampleDesc       sampleDesc
	Layout           int32
	Flags            int32
}

type d3d12Range struct {
	Begin uintptr
	End   uintptr
}

// resourceBarrier is a D3D12_RESOURCE_BARRIER holding
// a transition barrier.
type resourceBarrier struct {
	Type        int32
	Flags       int32
	Resource    uintptr
	Subresource uint32
	StateBefore uint32
	StateAfter  uint32
	_           uint32
}

type adapterDesc1 struct {
	Description           [128]uint16
	VendorID              uint32
	DeviceID              uint32
	SubSysID              uint32
	Revision              uint32
	DedicatedVideoMemory  uintptr
	DedicatedSystemMemory uintptr
	SharedSystemMemory    uintptr
	AdapterLUID           struct {
		LowPart  uint32
		HighPart int32
	}
	Flags uint32
}

type message struct {
	Category              int32
	Severity              int32
	ID                    int32
	Description           *byte
	DescriptionByteLength uintptr
}
