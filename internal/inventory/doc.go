// Package inventory tracks the devices announced by the hardware
// service and layers user lighting configuration on top of them.
//
// Hardware snapshots arrive wholesale and are merged by output id, so
// effect selections, parameters and user segments survive rescans while
// anything the driver renamed or resized is reset safely. All reads go
// through DTO builders that resolve effect and brightness inheritance,
// so callers never see raw per-scope storage.
//
// Configuration persists per device serial id through ConfigRepository,
// letting a device keep its lighting when it moves to another port.
package inventory
