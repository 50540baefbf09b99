/*
Package ports defines the driven ports (interfaces) used by the powerset engine.

These interfaces decouple the engine from storage and coordination backends.

# Key Interfaces

  - MachineStore: persists named automata as codec.Document values.
  - DistributedLocker: serializes writers of the same machine name across processes.

RunMachineStoreContract and RunLockerContract are reusable suites that every
adapter runs in its own tests.
*/
package ports
